package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Style is detected from the terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Describe formats a definition as markdown: a header, the state sets and
// the transition table in declared state order.
func Describe(def domain.Definition) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", def.Title())
	if def.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", def.Description)
	}

	fmt.Fprintf(&sb, "- **ID**: `%s`\n", def.ID)
	fmt.Fprintf(&sb, "- **States**: %s\n", codeList(def.States))
	fmt.Fprintf(&sb, "- **Start**: `%s`\n", def.Start)
	if len(def.Accept) > 0 {
		fmt.Fprintf(&sb, "- **Accept**: %s\n", codeList(def.Accept))
	}
	if len(def.Alphabet) > 0 {
		syms := make([]string, len(def.Alphabet))
		for i, s := range def.Alphabet {
			syms[i] = string(s)
		}
		fmt.Fprintf(&sb, "- **Alphabet**: %s\n", codeList(syms))
	}
	fmt.Fprintf(&sb, "- **Blank**: `%s`\n", def.BlankSymbol())
	if def.Input != "" {
		fmt.Fprintf(&sb, "- **Default input**: `%s`\n", def.Input)
	}

	sb.WriteString("\n## Transitions\n\n")
	sb.WriteString("| State | Read | Write | Move | Next |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, from := range def.States {
		row := def.Transitions[from]
		reads := make([]string, 0, len(row))
		for read := range row {
			reads = append(reads, string(read))
		}
		sort.Strings(reads)
		for _, read := range reads {
			a := row[domain.Symbol(read)]
			fmt.Fprintf(&sb, "| `%s` | `%s` | `%s` | %s | `%s` |\n", from, read, a.Write, a.Move, a.Next)
		}
	}
	return sb.String()
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}
