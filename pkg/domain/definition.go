package domain

// Point is a 2D coordinate in diagram space.
type Point struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Definition is the static description of a deterministic single-tape machine.
// It is supplied as configuration and never mutated by the engine.
type Definition struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// States is the ordered list of declared state identifiers.
	States []string `json:"states" yaml:"states"`

	// Alphabet lists the tape symbols. The blank may be listed or omitted.
	// An empty alphabet disables symbol checks at construction time.
	Alphabet []Symbol `json:"alphabet,omitempty" yaml:"alphabet,omitempty"`

	// Blank is the distinguished blank symbol (DefaultBlank when empty).
	Blank Symbol `json:"blank,omitempty" yaml:"blank,omitempty"`

	// Transitions maps state -> read symbol -> action.
	Transitions map[string]map[Symbol]Action `json:"transitions" yaml:"transitions"`

	Start  string   `json:"start" yaml:"start"`
	Accept []string `json:"accept,omitempty" yaml:"accept,omitempty"`

	// Positions optionally pins diagram coordinates per state.
	// Absence selects the force layout.
	Positions map[string]Point `json:"positions,omitempty" yaml:"positions,omitempty"`

	// Input is an optional default tape content.
	Input string `json:"input,omitempty" yaml:"input,omitempty"`
}

// BlankSymbol returns the configured blank, falling back to DefaultBlank.
func (d Definition) BlankSymbol() Symbol {
	if d.Blank == "" {
		return DefaultBlank
	}
	return d.Blank
}

// IsAccept reports whether state belongs to the accept set.
func (d Definition) IsAccept(state string) bool {
	for _, s := range d.Accept {
		if s == state {
			return true
		}
	}
	return false
}

// Title returns a human readable name for the definition.
func (d Definition) Title() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	c := d
	c.States = append([]string(nil), d.States...)
	c.Alphabet = append([]Symbol(nil), d.Alphabet...)
	c.Accept = append([]string(nil), d.Accept...)
	if d.Transitions != nil {
		c.Transitions = make(map[string]map[Symbol]Action, len(d.Transitions))
		for from, row := range d.Transitions {
			r := make(map[Symbol]Action, len(row))
			for k, v := range row {
				r[k] = v
			}
			c.Transitions[from] = r
		}
	}
	if d.Positions != nil {
		c.Positions = make(map[string]Point, len(d.Positions))
		for k, v := range d.Positions {
			c.Positions[k] = v
		}
	}
	return c
}
