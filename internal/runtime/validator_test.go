package runtime_test

import (
	"errors"
	"testing"

	"github.com/aretw0/turingviz/internal/runtime"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Definition)
		want   error
	}{
		{
			name:   "Empty Definition",
			mutate: func(d *domain.Definition) { d.States = nil },
			want:   domain.ErrEmptyDefinition,
		},
		{
			name:   "Duplicate State",
			mutate: func(d *domain.Definition) { d.States = append(d.States, "back") },
			want:   domain.ErrDuplicateState,
		},
		{
			name:   "Unknown Start",
			mutate: func(d *domain.Definition) { d.Start = "nowhere" },
			want:   domain.ErrUnknownStartState,
		},
		{
			name:   "Unknown Accept",
			mutate: func(d *domain.Definition) { d.Accept = []string{"accept", "done"} },
			want:   domain.ErrUnknownAcceptState,
		},
		{
			name: "Invalid Target",
			mutate: func(d *domain.Definition) {
				d.Transitions["start"]["a"] = act("_", domain.MoveRight, "haveC")
			},
			want: domain.ErrInvalidTransitionTarget,
		},
		{
			name: "Unknown Source State",
			mutate: func(d *domain.Definition) {
				d.Transitions["ghost"] = map[domain.Symbol]domain.Action{"a": act("a", domain.MoveRight, "start")}
			},
			want: domain.ErrUnknownState,
		},
		{
			name: "Invalid Move",
			mutate: func(d *domain.Definition) {
				d.Transitions["back"]["a"] = act("a", "S", "back")
			},
			want: domain.ErrInvalidMove,
		},
		{
			name: "Unknown Read Symbol",
			mutate: func(d *domain.Definition) {
				d.Transitions["back"]["c"] = act("a", domain.MoveLeft, "back")
			},
			want: domain.ErrUnknownSymbol,
		},
		{
			name: "Unknown Write Symbol",
			mutate: func(d *domain.Definition) {
				d.Transitions["back"]["a"] = act("x", domain.MoveLeft, "back")
			},
			want: domain.ErrUnknownSymbol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := palindrome()
			tt.mutate(&def)

			err := runtime.Validate(def)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %v in %v", tt.want, err)

			_, err = runtime.NewTable(def)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, runtime.Validate(palindrome()))
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	def := palindrome()
	def.Start = "nowhere"
	def.Transitions["back"]["a"] = act("a", "S", "limbo")

	err := runtime.Validate(def)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownStartState)
	assert.ErrorIs(t, err, domain.ErrInvalidMove)
	assert.ErrorIs(t, err, domain.ErrInvalidTransitionTarget)
}

func TestValidate_NoAlphabetSkipsSymbolChecks(t *testing.T) {
	def := domain.Definition{
		ID:     "free",
		States: []string{"q0", "q1"},
		Start:  "q0",
		Transitions: map[string]map[domain.Symbol]domain.Action{
			"q0": {"anything": act("else", domain.MoveRight, "q1")},
		},
	}
	assert.NoError(t, runtime.Validate(def))
}
