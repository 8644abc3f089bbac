package view

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/turingviz/internal/logging"
	"github.com/aretw0/turingviz/pkg/diagram"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/layout"
)

// NodeView is a positioned diagram node.
type NodeView struct {
	diagram.Node
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Placed bool    `json:"placed"`
}

// EdgeView is a routed diagram edge. Path is empty when an endpoint has no position.
type EdgeView struct {
	diagram.Edge
	Path           string `json:"path"`
	LabelTransform string `json:"label_transform,omitempty"`
}

// Diagram is the renderable state diagram.
type Diagram struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Radius float64    `json:"radius"`
	Nodes  []NodeView `json:"nodes"`
	Edges  []EdgeView `json:"edges"`
}

type options struct {
	radius float64
	width  float64
	height float64
	logger *slog.Logger
}

// Option configures rendering.
type Option func(*options)

// WithRadius sets the node radius.
func WithRadius(r float64) Option {
	return func(o *options) { o.radius = r }
}

// WithCanvas sets the drawing size.
func WithCanvas(width, height float64) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithLogger sets the logger used to report unroutable edges.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	cfg := layout.DefaultForceConfig()
	o := options{
		radius: diagram.NodeRadius,
		width:  cfg.Width,
		height: cfg.Height,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Render positions the nodes of m and routes its edges.
// Edges with a missing endpoint keep an empty path; rendering carries on.
func Render(m diagram.Model, pos layout.Positions, opts ...Option) Diagram {
	o := newOptions(opts)
	d := Diagram{
		Width:  o.width,
		Height: o.height,
		Radius: o.radius,
		Nodes:  make([]NodeView, 0, len(m.Nodes)),
		Edges:  make([]EdgeView, 0, len(m.Edges)),
	}

	for _, n := range m.Nodes {
		p, ok := pos[n.ID]
		d.Nodes = append(d.Nodes, NodeView{Node: n, X: p.X, Y: p.Y, Placed: ok})
	}

	for _, e := range m.Edges {
		ev := EdgeView{Edge: e}
		path, label, err := RouteEdge(e, pos, o.radius)
		if err != nil {
			o.logger.Debug("edge not routed", "source", e.Source, "target", e.Target, "err", err)
		}
		ev.Path, ev.LabelTransform = path, label
		d.Edges = append(d.Edges, ev)
	}
	return d
}

// RouteEdge computes the path and label transform of a single edge.
// It returns domain.ErrMissingLayoutNode when an endpoint has no position.
func RouteEdge(e diagram.Edge, pos layout.Positions, r float64) (path, label string, err error) {
	src, ok := pos[e.Source]
	if !ok {
		return "", "", fmt.Errorf("source %q: %w", e.Source, domain.ErrMissingLayoutNode)
	}
	dst, ok := pos[e.Target]
	if !ok {
		return "", "", fmt.Errorf("target %q: %w", e.Target, domain.ErrMissingLayoutNode)
	}
	path, _ = diagram.Path(e.Shape, src, dst, r)
	label, _ = diagram.LabelTransform(e.Shape, src, dst, r)
	return path, label, nil
}
