// Package workload parses the fixed-grammar quintuple format consumed by
// the scheduler core into an ordered sequence of scheduler.Process records.
//
// Input is whitespace-separated integer quintuples, one per line:
//
//	<arrival_time> <pid> <cpu_time> <io_time> <repeats>
//
// Consecutive lines sharing the same pid describe successive Behaviours of
// the same process; arrival_time on lines after the first is ignored. A
// change in pid delimits processes. EOF terminates input.
package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/piergabory/mlqfs/pkg/scheduler"
)

// Load reads quintuples from r and returns the processes they describe, in
// the order their first lines appear in the input (not sorted by
// arrival_time). It fails fast on the first malformed line.
func Load(r io.Reader) ([]scheduler.Process, error) {
	scanner := bufio.NewScanner(r)

	var processes []scheduler.Process
	var current *scheduler.Process

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		arrival, pid, cpuTime, ioTime, repeats, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("workload: line %d: %w", lineNum, err)
		}

		if current == nil || current.PID != pid {
			if current != nil {
				processes = append(processes, *current)
			}
			current = &scheduler.Process{PID: pid, ArrivalTime: arrival}
		}

		current.Behaviours = append(current.Behaviours, scheduler.Behaviour{
			CPUTime: cpuTime,
			IOTime:  ioTime,
			Repeats: repeats,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("workload: read: %w", err)
	}

	if current != nil {
		processes = append(processes, *current)
	}

	return processes, nil
}

func parseLine(line string) (arrival, pid, cpuTime, ioTime, repeats int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return 0, 0, 0, 0, 0, ErrMalformedLine
	}

	vals := make([]int, 5)
	for i, f := range fields {
		n, convErr := strconv.Atoi(f)
		if convErr != nil {
			return 0, 0, 0, 0, 0, ErrMalformedLine
		}
		vals[i] = n
	}

	arrival, pid, cpuTime, ioTime, repeats = vals[0], vals[1], vals[2], vals[3], vals[4]

	if pid <= 0 {
		return 0, 0, 0, 0, 0, ErrInvalidPID
	}
	if arrival < 0 || cpuTime < 0 || ioTime < 0 || repeats < 0 {
		return 0, 0, 0, 0, 0, ErrNegativeField
	}

	return arrival, pid, cpuTime, ioTime, repeats, nil
}
