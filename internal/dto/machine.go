package dto

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// MachineMetadata is the document form of a machine definition.
// It uses "mapstructure" tags to match the keys found in YAML, JSON and
// frontmatter documents.
type MachineMetadata struct {
	ID          string   `json:"id" yaml:"id" mapstructure:"id"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	States      []string `json:"states" yaml:"states" mapstructure:"states"`
	Alphabet    []string `json:"alphabet,omitempty" yaml:"alphabet,omitempty" mapstructure:"alphabet"`
	Blank       string   `json:"blank,omitempty" yaml:"blank,omitempty" mapstructure:"blank"`
	Start       string   `json:"start" yaml:"start" mapstructure:"start"`
	Accept      []string `json:"accept,omitempty" yaml:"accept,omitempty" mapstructure:"accept"`
	Input       string   `json:"input,omitempty" yaml:"input,omitempty" mapstructure:"input"`

	// Transitions maps state -> read symbol -> action.
	Transitions map[string]map[string]ActionMetadata `json:"transitions" yaml:"transitions" mapstructure:"transitions"`

	Positions map[string]PointMetadata `json:"positions,omitempty" yaml:"positions,omitempty" mapstructure:"positions"`
}

// ActionMetadata is a transition action. In documents it may also be written
// in the compact "write,move,next" form.
type ActionMetadata struct {
	Write string `json:"write" yaml:"write" mapstructure:"write"`
	Move  string `json:"move" yaml:"move" mapstructure:"move"`
	Next  string `json:"next" yaml:"next" mapstructure:"next"`
}

type PointMetadata struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Decode converts a generic document map into MachineMetadata.
// Scalars are weakly typed so that YAML numbers work as symbols (`write: 0`).
func Decode(raw map[string]any) (MachineMetadata, error) {
	var meta MachineMetadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       compactActionHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &meta,
	})
	if err != nil {
		return meta, err
	}
	if err := dec.Decode(raw); err != nil {
		return meta, fmt.Errorf("failed to decode machine document: %w", err)
	}
	return meta, nil
}

// compactActionHook expands "b,R,q1" into an ActionMetadata.
func compactActionHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(ActionMetadata{}) {
		return data, nil
	}
	parts := strings.Split(data.(string), ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("action %q: want \"write,move,next\"", data)
	}
	return ActionMetadata{
		Write: strings.TrimSpace(parts[0]),
		Move:  strings.TrimSpace(parts[1]),
		Next:  strings.TrimSpace(parts[2]),
	}, nil
}

// ToDefinition maps the document onto the domain definition.
// It does not validate; construction of the transition table does.
func (m MachineMetadata) ToDefinition() domain.Definition {
	def := domain.Definition{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		States:      append([]string(nil), m.States...),
		Blank:       domain.Symbol(m.Blank),
		Start:       m.Start,
		Accept:      append([]string(nil), m.Accept...),
		Input:       m.Input,
	}
	for _, s := range m.Alphabet {
		def.Alphabet = append(def.Alphabet, domain.Symbol(s))
	}
	if len(m.Transitions) > 0 {
		def.Transitions = make(map[string]map[domain.Symbol]domain.Action, len(m.Transitions))
		for from, row := range m.Transitions {
			r := make(map[domain.Symbol]domain.Action, len(row))
			for read, a := range row {
				r[domain.Symbol(read)] = domain.Action{
					Write: domain.Symbol(a.Write),
					Move:  domain.Move(strings.ToUpper(a.Move)),
					Next:  a.Next,
				}
			}
			def.Transitions[from] = r
		}
	}
	if len(m.Positions) > 0 {
		def.Positions = make(map[string]domain.Point, len(m.Positions))
		for id, p := range m.Positions {
			def.Positions[id] = domain.Point{X: p.X, Y: p.Y}
		}
	}
	return def
}

// FromDefinition is the inverse of ToDefinition.
func FromDefinition(def domain.Definition) MachineMetadata {
	meta := MachineMetadata{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		States:      append([]string(nil), def.States...),
		Blank:       string(def.Blank),
		Start:       def.Start,
		Accept:      append([]string(nil), def.Accept...),
		Input:       def.Input,
	}
	for _, s := range def.Alphabet {
		meta.Alphabet = append(meta.Alphabet, string(s))
	}
	if len(def.Transitions) > 0 {
		meta.Transitions = make(map[string]map[string]ActionMetadata, len(def.Transitions))
		for from, row := range def.Transitions {
			r := make(map[string]ActionMetadata, len(row))
			for read, a := range row {
				r[string(read)] = ActionMetadata{Write: string(a.Write), Move: string(a.Move), Next: a.Next}
			}
			meta.Transitions[from] = r
		}
	}
	if len(def.Positions) > 0 {
		meta.Positions = make(map[string]PointMetadata, len(def.Positions))
		for id, p := range def.Positions {
			meta.Positions[id] = PointMetadata{X: p.X, Y: p.Y}
		}
	}
	return meta
}

// Summary is the listing form of a definition used by CLIs and APIs.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	States      int    `json:"states"`
	Rules       int    `json:"rules"`
	Layout      string `json:"layout"`
}

// Summarize builds the listing form of def.
func Summarize(def domain.Definition) Summary {
	rules := 0
	for _, row := range def.Transitions {
		rules += len(row)
	}
	layout := "force"
	if len(def.Positions) > 0 {
		layout = "fixed"
	}
	return Summary{
		ID:          def.ID,
		Name:        def.Title(),
		Description: def.Description,
		States:      len(def.States),
		Rules:       rules,
		Layout:      layout,
	}
}

