/*
Package turingviz is a deterministic single-tape Turing machine engine paired
with a state-diagram renderer.

It separates the execution core (tape, transition table, executor) from the
presentation (diagram model, layout, edge routing), so a machine can be
stepped from a CLI, an HTTP session or an AI agent while the same renderable
diagram is produced for every surface.

# Concept

A Machine is the per-machine context object. It owns one tape, one executor,
one diagram model and one layout engine; nothing is shared across machines.
Definitions are static configuration and are validated once, when the
Machine is built.

# Key Features

  - Sparse bi-infinite tape: blank cells are never stored.
  - Strict construction: every definition problem is reported at once.
  - Step back: an optional trace restores the exact previous configuration.
  - Edge routing: self-loops, bidirectional arcs and one-way edges never overlap.
  - Two layouts: fixed coordinates or a force simulation, cached per graph.

# Usage

	m, err := turingviz.New(def)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	m.Restart(ctx, "abba")
	for m.Step(ctx) {
	}
	fmt.Println(m.Snapshot().Accepting)

	d, _ := m.Diagram(ctx)
	_ = view.WriteSVG(os.Stdout, d)
*/
package turingviz
