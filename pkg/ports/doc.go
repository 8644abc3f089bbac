/*
Package ports defines the driven ports (interfaces) of the turingviz engine.

These interfaces decouple the core from external implementations, so
definitions can come from the builtin catalog, files or a loam repository,
and sessions can live in memory or in Redis.

# Key Interfaces

  - MachineLoader: Resolves machine definitions by ID.
  - SessionStore: Persists session checkpoints.
  - DistributedLocker: Serialises session access across replicas.
*/
package ports
