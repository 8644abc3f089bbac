package runtime

import (
	"sort"

	"github.com/aretw0/turingviz/pkg/domain"
)

// Table is an immutable, validated transition table.
// A missing (state, symbol) entry is the halting condition.
type Table struct {
	def      domain.Definition
	declared map[string]struct{}
	accept   map[string]struct{}
	rows     map[string]map[domain.Symbol]domain.Action
	rules    []domain.Rule
}

// NewTable validates def and builds its lookup table.
// The definition is copied; later changes to def do not affect the table.
func NewTable(def domain.Definition) (*Table, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}

	blank := def.BlankSymbol()
	t := &Table{
		def:      def.Clone(),
		declared: make(map[string]struct{}, len(def.States)),
		accept:   make(map[string]struct{}, len(def.Accept)),
		rows:     make(map[string]map[domain.Symbol]domain.Action, len(def.Transitions)),
	}
	t.def.Blank = blank

	for _, s := range def.States {
		t.declared[s] = struct{}{}
	}
	for _, s := range def.Accept {
		t.accept[s] = struct{}{}
	}
	for from, row := range def.Transitions {
		r := make(map[domain.Symbol]domain.Action, len(row))
		for read, act := range row {
			if act.Write == "" {
				act.Write = blank
			}
			r[read] = act
		}
		t.rows[from] = r
	}

	t.rules = t.flatten()
	return t, nil
}

// Lookup returns the action for (state, symbol); false means halt.
func (t *Table) Lookup(state string, symbol domain.Symbol) (domain.Action, bool) {
	row, ok := t.rows[state]
	if !ok {
		return domain.Action{}, false
	}
	act, ok := row[symbol]
	return act, ok
}

// States returns the declared states in declaration order.
func (t *Table) States() []string {
	return append([]string(nil), t.def.States...)
}

// HasState reports whether state is declared.
func (t *Table) HasState(state string) bool {
	_, ok := t.declared[state]
	return ok
}

// Accepting reports whether state is an accept state.
func (t *Table) Accepting(state string) bool {
	_, ok := t.accept[state]
	return ok
}

// Start returns the start state.
func (t *Table) Start() string { return t.def.Start }

// Blank returns the blank symbol.
func (t *Table) Blank() domain.Symbol { return t.def.Blank }

// ID returns the definition identifier.
func (t *Table) ID() string { return t.def.ID }

// Definition returns a copy of the definition the table was built from.
func (t *Table) Definition() domain.Definition { return t.def.Clone() }

// Rules returns every rule in deterministic order: declared state order, then
// alphabet order, then lexical order for symbols outside the alphabet.
func (t *Table) Rules() []domain.Rule {
	return append([]domain.Rule(nil), t.rules...)
}

func (t *Table) flatten() []domain.Rule {
	rank := make(map[domain.Symbol]int, len(t.def.Alphabet)+1)
	for i, s := range t.def.Alphabet {
		if _, ok := rank[s]; !ok {
			rank[s] = i
		}
	}

	var rules []domain.Rule
	for _, from := range t.def.States {
		row := t.rows[from]
		symbols := sortedSymbols(row)
		sort.SliceStable(symbols, func(i, j int) bool {
			ri, iKnown := rank[symbols[i]]
			rj, jKnown := rank[symbols[j]]
			if iKnown && jKnown {
				return ri < rj
			}
			return iKnown && !jKnown
		})
		for _, read := range symbols {
			rules = append(rules, domain.Rule{From: from, Read: read, Action: row[read]})
		}
	}
	return rules
}
