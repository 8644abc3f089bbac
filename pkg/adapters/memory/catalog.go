package memory

import "github.com/aretw0/turingviz/pkg/domain"

func act(write domain.Symbol, move domain.Move, next string) domain.Action {
	return domain.Action{Write: write, Move: move, Next: next}
}

// Palindrome accepts strings over {a, b} that read the same in both
// directions. It erases one symbol from each end per pass.
func Palindrome() domain.Definition {
	scan := func(next, match string) map[domain.Symbol]domain.Action {
		return map[domain.Symbol]domain.Action{
			"a": act("a", domain.MoveRight, next),
			"b": act("b", domain.MoveRight, next),
			"_": act("_", domain.MoveLeft, match),
		}
	}
	return domain.Definition{
		ID:          "palindrome",
		Name:        "Palindrome checker",
		Description: "Erases matching symbols from both ends of the input until the tape is blank. Accepts palindromes over {a, b}.",
		States:      []string{"start", "haveA", "haveB", "matchA", "matchB", "back", "accept", "reject"},
		Alphabet:    []domain.Symbol{"a", "b"},
		Blank:       domain.DefaultBlank,
		Start:       "start",
		Accept:      []string{"accept"},
		Input:       "abba",
		Transitions: map[string]map[domain.Symbol]domain.Action{
			"start": {
				"a": act("_", domain.MoveRight, "haveA"),
				"b": act("_", domain.MoveRight, "haveB"),
				"_": act("_", domain.MoveRight, "accept"),
			},
			"haveA": scan("haveA", "matchA"),
			"haveB": scan("haveB", "matchB"),
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
		Positions: map[string]domain.Point{
			"start":  {X: 100, Y: 300},
			"haveA":  {X: 260, Y: 160},
			"haveB":  {X: 260, Y: 440},
			"matchA": {X: 440, Y: 160},
			"matchB": {X: 440, Y: 440},
			"back":   {X: 600, Y: 300},
			"accept": {X: 700, Y: 120},
			"reject": {X: 700, Y: 480},
		},
	}
}

// BinaryToUnary marks the first digit and copies it to the end of the input.
func BinaryToUnary() domain.Definition {
	return domain.Definition{
		ID:          "binary-unary",
		Name:        "Binary to unary",
		Description: "Marks the first binary digit with X and appends it after the input.",
		States:      []string{"q0", "q1", "q2", "q3"},
		Alphabet:    []domain.Symbol{"0", "1", "X"},
		Blank:       domain.DefaultBlank,
		Start:       "q0",
		Accept:      []string{"q3"},
		Input:       "101",
		Transitions: map[string]map[domain.Symbol]domain.Action{
			"q0": {
				"0": act("X", domain.MoveRight, "q1"),
				"1": act("X", domain.MoveRight, "q2"),
			},
			"q1": {
				"0": act("0", domain.MoveRight, "q1"),
				"1": act("1", domain.MoveRight, "q1"),
				"_": act("0", domain.MoveRight, "q3"),
			},
			"q2": {
				"0": act("0", domain.MoveRight, "q2"),
				"1": act("1", domain.MoveRight, "q2"),
				"_": act("1", domain.MoveRight, "q3"),
			},
			"q3": {
				"0": act("0", domain.MoveRight, "q3"),
				"1": act("1", domain.MoveRight, "q3"),
			},
		},
	}
}

// BlankAccept accepts the empty tape in a single step.
func BlankAccept() domain.Definition {
	return domain.Definition{
		ID:          "blank-accept",
		Name:        "Blank acceptor",
		Description: "Accepts exactly the empty input.",
		States:      []string{"start", "accept"},
		Alphabet:    []domain.Symbol{"a", "b"},
		Start:       "start",
		Accept:      []string{"accept"},
		Transitions: map[string]map[domain.Symbol]domain.Action{
			"start": {"_": act("_", domain.MoveRight, "accept")},
		},
	}
}

// BusyBeaver is the two-state busy beaver on a tape of zeros.
// It halts after 6 steps with four 1s written.
func BusyBeaver() domain.Definition {
	return domain.Definition{
		ID:          "busy-beaver-2",
		Name:        "Busy beaver (2 states)",
		Description: "Writes the maximum number of 1s a two-state machine can write before halting.",
		States:      []string{"A", "B", "H"},
		Alphabet:    []domain.Symbol{"0", "1"},
		Blank:       "0",
		Start:       "A",
		Accept:      []string{"H"},
		Transitions: map[string]map[domain.Symbol]domain.Action{
			"A": {
				"0": act("1", domain.MoveRight, "B"),
				"1": act("1", domain.MoveLeft, "B"),
			},
			"B": {
				"0": act("1", domain.MoveLeft, "A"),
				"1": act("1", domain.MoveRight, "H"),
			},
		},
	}
}

// Builtin returns the bundled example machines.
func Builtin() []domain.Definition {
	return []domain.Definition{Palindrome(), BinaryToUnary(), BlankAccept(), BusyBeaver()}
}
