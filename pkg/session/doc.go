/*
Package session implements session management and persistence orchestration.

A session is one machine run owned by one caller at a time. The Manager
serialises access per session ID (a reference-counted local mutex, plus an
optional distributed lock for multiple replicas), rebuilds the machine from
its definition, applies the caller's operation and persists the resulting
checkpoint and undo trace.
*/
package session
