package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/turingviz/pkg/diagram"
	"github.com/aretw0/turingviz/pkg/layout"
	"github.com/aretw0/turingviz/pkg/view"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown diagram format")

// Format is a diagram output encoding.
type Format string

const (
	FormatSVG     Format = "svg"
	FormatJSON    Format = "json"
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatSVG, FormatJSON, FormatMermaid, FormatDOT}

// ParseFormat is case-insensitive. An empty string selects SVG.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatSVG, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// ContentType returns the media type of the encoding.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Source is a highlighted, positionable diagram.
type Source interface {
	Model() diagram.Model
	Layout(ctx context.Context) (layout.Positions, error)
	Diagram(ctx context.Context) (view.Diagram, error)
}

// Render encodes the diagram of src in format f.
func Render(ctx context.Context, src Source, f Format) ([]byte, error) {
	switch f {
	case FormatSVG:
		d, err := src.Diagram(ctx)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := view.WriteSVG(&buf, d); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		d, err := src.Diagram(ctx)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(d, "", "  ")
	case FormatMermaid:
		return []byte(GenerateMermaid(src.Model())), nil
	case FormatDOT:
		pos, err := src.Layout(ctx)
		if err != nil {
			return nil, err
		}
		return []byte(GenerateDOT(src.Model(), pos)), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, string(f))
	}
}
