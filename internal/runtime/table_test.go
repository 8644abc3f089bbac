package runtime_test

import (
	"testing"

	"github.com/aretw0/turingviz/internal/runtime"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Lookup(t *testing.T) {
	table, err := runtime.NewTable(palindrome())
	require.NoError(t, err)

	got, ok := table.Lookup("start", "a")
	require.True(t, ok)
	assert.Equal(t, act("_", domain.MoveRight, "haveA"), got)

	_, ok = table.Lookup("accept", "_")
	assert.False(t, ok, "accept has no outgoing transitions")

	_, ok = table.Lookup("unknown", "a")
	assert.False(t, ok)
}

func TestTable_RulesOrder(t *testing.T) {
	def := domain.Definition{
		ID:       "order",
		States:   []string{"q1", "q0"},
		Alphabet: []domain.Symbol{"b", "a"},
		Start:    "q0",
		Transitions: map[string]map[domain.Symbol]domain.Action{
			"q0": {
				"a": act("a", domain.MoveRight, "q1"),
				"_": act("_", domain.MoveRight, "q1"),
				"b": act("b", domain.MoveRight, "q1"),
			},
			"q1": {"a": act("b", domain.MoveLeft, "q0")},
		},
	}
	table, err := runtime.NewTable(def)
	require.NoError(t, err)

	var got []string
	for _, r := range table.Rules() {
		got = append(got, r.From+":"+string(r.Read))
	}
	assert.Equal(t, []string{"q1:a", "q0:b", "q0:a", "q0:_"}, got)
}

func TestTable_EmptyWriteMeansBlank(t *testing.T) {
	def := domain.Definition{
		ID:     "eraser",
		States: []string{"q0", "q1"},
		Start:  "q0",
		Transitions: map[string]map[domain.Symbol]domain.Action{
			"q0": {"1": {Move: domain.MoveRight, Next: "q1"}},
		},
	}
	table, err := runtime.NewTable(def)
	require.NoError(t, err)

	got, ok := table.Lookup("q0", "1")
	require.True(t, ok)
	assert.Equal(t, domain.DefaultBlank, got.Write)
}

func TestTable_IsolatedFromDefinition(t *testing.T) {
	def := palindrome()
	table, err := runtime.NewTable(def)
	require.NoError(t, err)

	def.Transitions["start"]["a"] = act("b", domain.MoveLeft, "reject")
	def.States[0] = "mutated"

	got, _ := table.Lookup("start", "a")
	assert.Equal(t, "haveA", got.Next)
	assert.Equal(t, "start", table.States()[0])
	assert.True(t, table.Accepting("accept"))
	assert.False(t, table.Accepting("reject"))
}
