// Package engine wraps the external SS-BGP simulation engine, a black-box
// jar invoked as a child process. The runner translates a Simulation into
// the engine's argument convention, captures all engine output to a
// per-simulation log file, and maps the exit status to success or failure.
//
// The engine's interface boundary is exactly: input files in, output files
// in a directory out, exit code 0 on success. Everything the engine computes
// is opaque to this worker.
package engine
