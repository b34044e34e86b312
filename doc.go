// Package decimate implements a parallel, quadric-error-metric triangle
// mesh decimation engine.
//
// Given an indexed triangle mesh, Decimate (and its budget-driven wrapper
// DecimateBudget) collapses edges in approximate ascending order of a
// scalar cost until a feature-size or triangle-count target is reached,
// producing a topologically valid, orientation-preserving simplification.
//
// The engine owns no process-wide state: every configuration and
// run-time counter lives on an *Operation passed by the caller. File
// loading, command-line drivers, and vertex-cache ordering are
// deliberately outside this package's scope; callers feed it through
// the Buffers contract in input.go.
package decimate
