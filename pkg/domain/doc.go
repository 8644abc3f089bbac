/*
Package domain contains the core domain models of the turingviz engine.

It defines the fundamental entities of a single-tape deterministic Turing
machine: symbols, head moves, actions, machine definitions and the execution
snapshots exchanged with the rendering boundary. This package is kept pure and
free of I/O so that every adapter (CLI, HTTP, MCP, stores) can share it.

# Key Entities

  - Definition: the static description of a machine (states, alphabet, table).
  - Action / Rule: one entry of the transition table.
  - Checkpoint: the exact restorable configuration of a machine.
  - Snapshot: the read-only view handed to renderers and remote clients.
*/
package domain
