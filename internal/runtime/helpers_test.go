package runtime_test

import (
	"testing"

	"github.com/aretw0/turingviz/internal/runtime"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/tape"
	"github.com/stretchr/testify/require"
)

func act(write domain.Symbol, move domain.Move, next string) domain.Action {
	return domain.Action{Write: write, Move: move, Next: next}
}

// palindrome erases matching symbols from both ends until the tape is blank.
func palindrome() domain.Definition {
	scan := func(next string) map[domain.Symbol]domain.Action {
		return map[domain.Symbol]domain.Action{
			"a": act("a", domain.MoveRight, next),
			"b": act("b", domain.MoveRight, next),
		}
	}
	haveA := scan("haveA")
	haveA["_"] = act("_", domain.MoveLeft, "matchA")
	haveB := scan("haveB")
	haveB["_"] = act("_", domain.MoveLeft, "matchB")

	return domain.Definition{
		ID:       "palindrome",
		States:   []string{"start", "haveA", "haveB", "matchA", "matchB", "back", "accept", "reject"},
		Alphabet: []domain.Symbol{"a", "b"},
		Start:    "start",
		Accept:   []string{"accept"},
		Transitions: map[string]map[domain.Symbol]domain.Action{
			"start": {
				"a": act("_", domain.MoveRight, "haveA"),
				"b": act("_", domain.MoveRight, "haveB"),
				"_": act("_", domain.MoveRight, "accept"),
			},
			"haveA": haveA,
			"haveB": haveB,
			"matchA": {
				"a": act("_", domain.MoveLeft, "back"),
				"b": act("b", domain.MoveLeft, "reject"),
				"_": act("_", domain.MoveRight, "accept"),
			},
			"matchB": {
				"b": act("_", domain.MoveLeft, "back"),
				"a": act("a", domain.MoveLeft, "reject"),
				"_": act("_", domain.MoveRight, "accept"),
			},
			"back": {
				"a": act("a", domain.MoveLeft, "back"),
				"b": act("b", domain.MoveLeft, "back"),
				"_": act("_", domain.MoveRight, "start"),
			},
		},
	}
}

func newExecutor(t *testing.T, def domain.Definition, input string, opts ...runtime.Option) *runtime.Executor {
	t.Helper()
	table, err := runtime.NewTable(def)
	require.NoError(t, err)
	return runtime.NewExecutor(table, tape.New(input, def.BlankSymbol()), opts...)
}
