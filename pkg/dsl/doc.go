/*
Package dsl provides a fluent Go builder for machine definitions.

It is an alternative to YAML or JSON documents when definitions are
generated, used in tests or benefit from IDE completion.

Example usage:

	b := dsl.New("binary-unary").Alphabet("0", "1", "X").Input("101")

	b.State("q0").Start().
		Right("0", "X", "q1").
		Right("1", "X", "q2")

	b.State("q1").Accept()

	def, err := b.Build()
	// ... pass def to turingviz.New(def)
*/
package dsl
