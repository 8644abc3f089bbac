package runtime

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/turingviz/pkg/domain"
)

// Validate checks a definition and reports every problem it finds.
// The returned error joins one wrapped sentinel per problem, so callers can
// test each category with errors.Is.
func Validate(def domain.Definition) error {
	if len(def.States) == 0 {
		return fmt.Errorf("definition %q: %w", def.ID, domain.ErrEmptyDefinition)
	}

	var errs []error

	// 1. Declared states
	declared := make(map[string]struct{}, len(def.States))
	for _, s := range def.States {
		if _, dup := declared[s]; dup {
			errs = append(errs, fmt.Errorf("state %q: %w", s, domain.ErrDuplicateState))
			continue
		}
		declared[s] = struct{}{}
	}

	// 2. Start and accept states
	if _, ok := declared[def.Start]; !ok {
		errs = append(errs, fmt.Errorf("start %q: %w", def.Start, domain.ErrUnknownStartState))
	}
	for _, s := range def.Accept {
		if _, ok := declared[s]; !ok {
			errs = append(errs, fmt.Errorf("accept %q: %w", s, domain.ErrUnknownAcceptState))
		}
	}

	// 3. Transitions, in a stable order so reports are reproducible
	blank := def.BlankSymbol()
	alphabet := symbolSet(def.Alphabet, blank)
	for _, from := range transitionSources(def) {
		row := def.Transitions[from]
		if _, ok := declared[from]; !ok {
			errs = append(errs, fmt.Errorf("transitions from %q: %w", from, domain.ErrUnknownState))
		}
		for _, read := range sortedSymbols(row) {
			act := row[read]
			where := fmt.Sprintf("transition (%s, %s)", from, read)

			if read == "" {
				errs = append(errs, fmt.Errorf("%s: empty read symbol: %w", where, domain.ErrUnknownSymbol))
			} else if alphabet != nil {
				if _, ok := alphabet[read]; !ok {
					errs = append(errs, fmt.Errorf("%s: read %q: %w", where, read, domain.ErrUnknownSymbol))
				}
			}
			if alphabet != nil && act.Write != "" {
				if _, ok := alphabet[act.Write]; !ok {
					errs = append(errs, fmt.Errorf("%s: write %q: %w", where, act.Write, domain.ErrUnknownSymbol))
				}
			}
			if !act.Move.Valid() {
				errs = append(errs, fmt.Errorf("%s: move %q: %w", where, act.Move, domain.ErrInvalidMove))
			}
			if _, ok := declared[act.Next]; !ok {
				errs = append(errs, fmt.Errorf("%s: next %q: %w", where, act.Next, domain.ErrInvalidTransitionTarget))
			}
		}
	}

	return errors.Join(errs...)
}

// symbolSet returns nil when no alphabet is declared, which disables symbol checks.
func symbolSet(alphabet []domain.Symbol, blank domain.Symbol) map[domain.Symbol]struct{} {
	if len(alphabet) == 0 {
		return nil
	}
	set := make(map[domain.Symbol]struct{}, len(alphabet)+1)
	for _, s := range alphabet {
		set[s] = struct{}{}
	}
	set[blank] = struct{}{}
	return set
}

// transitionSources lists transition source states in declared order,
// followed by undeclared sources in lexical order.
func transitionSources(def domain.Definition) []string {
	seen := make(map[string]struct{}, len(def.Transitions))
	out := make([]string, 0, len(def.Transitions))
	for _, s := range def.States {
		if _, ok := def.Transitions[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	var rest []string
	for s := range def.Transitions {
		if _, ok := seen[s]; !ok {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func sortedSymbols(row map[domain.Symbol]domain.Action) []domain.Symbol {
	out := make([]domain.Symbol, 0, len(row))
	for s := range row {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
