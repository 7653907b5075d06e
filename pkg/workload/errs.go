package workload

import "errors"

var (
	// ErrMalformedLine indicates a line did not parse as five
	// whitespace-separated integers.
	ErrMalformedLine = errors.New("workload: malformed line")

	// ErrInvalidPID indicates a line's pid was zero or negative; pid 0 is
	// reserved for the null process and is never a valid workload pid.
	ErrInvalidPID = errors.New("workload: pid must be positive")

	// ErrNegativeField indicates arrival_time, cpu_time, io_time, or
	// repeats was negative.
	ErrNegativeField = errors.New("workload: counters must be non-negative")
)
