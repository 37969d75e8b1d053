// Package engine drives pipeline execution. It runs each step graph
// strictly sequentially, invoking collaborators as subprocesses,
// consulting the state store for skip-on-resume decisions, and
// persisting state after every step. A failure is fatal to its run but
// not to the session: remaining runs still attempt.
package engine
