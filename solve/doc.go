// Package solve turns one inbound query into a fully rendered result.
//
// The Orchestrator checks the response cache first. On a miss it takes a
// token from the pool, asks the upstream solver, renders every expression
// of the returned tree concurrently and assembles the Result. The cached
// copy is written in the background after the caller already has its
// answer, so concurrent misses for one query each do the full work and the
// last write wins.
package solve
