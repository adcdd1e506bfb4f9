// Package executor runs one build: for every configured stage, in order, it
// asks the registry for the resolved pass list and invokes each pass
// sequentially.
//
// Execution is fail-soft per pass. A pass returning false, logging an Error
// entry, or panicking does not stop the passes after it. A stage whose order
// cannot be resolved is never started, and no later stage runs: the build is
// aborted and the report says why.
package executor
