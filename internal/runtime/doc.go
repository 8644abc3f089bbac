// Package runtime implements the deterministic single-tape execution core:
// the validated transition table, the executor that applies it to a tape and
// the undo trace used for stepping backwards.
//
// The runtime is synchronous and performs no I/O. Callers that need to run a
// machine repeatedly use pkg/runner; callers that need a complete context
// object (tape, executor, diagram, layout) use the root turingviz package.
package runtime
