package domain

import "errors"

// Sentinel error kinds (§7). Callers use errors.Is against these; engine
// code wraps them with fmt.Errorf("...: %w", ErrXxx) for context.
var (
	// ErrInvalidSnapshot marks a schema-level problem with the input.
	// The engine refuses to run; validation is expected to happen
	// upstream, so reaching this is itself a defect report.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrEmptyPopulation means no active people were resolved from the
	// scenario's person strategy ids.
	ErrEmptyPopulation = errors.New("empty population")

	// ErrMissingReference means a referenced id (holding, strategy,
	// account) was not found in the snapshot.
	ErrMissingReference = errors.New("missing reference")

	// ErrNegativeAmount marks a configuration that produced a negative
	// required intent. No engine code returns it, and the engine writes
	// no log line for such an intent.
	ErrNegativeAmount = errors.New("negative amount")

	// ErrWorkerFailure marks an uncaught failure inside a batch worker.
	ErrWorkerFailure = errors.New("worker failure")

	// ErrTimeout marks a run that exceeded a caller-supplied wall-clock
	// bound.
	ErrTimeout = errors.New("timeout")
)
