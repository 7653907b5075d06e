package sink

import (
	"bufio"
	"fmt"
	"io"
)

// Variant selects the separator between an event's tag and its message, per
// the two acceptable templates in the output format contract.
type Variant int

const (
	// VariantTab separates "KIND:" from the message with a tab, the
	// default template.
	VariantTab Variant = iota
	// VariantSpace separates "KIND:" from the message with a single
	// space, the alternative template a test-suite contract may fix
	// instead.
	VariantSpace
)

// textSink writes the trace as plain text, one event per line.
type textSink struct {
	w       *bufio.Writer
	sep     string
	flushed bool
}

// NewTextSink returns a Sink that writes to w using the given template
// Variant. The caller is responsible for closing w; NewTextSink flushes
// buffered output after every Emit so partial traces are never lost to a
// missing Close.
func NewTextSink(w io.Writer, variant Variant) Sink {
	sep := "\t"
	if variant == VariantSpace {
		sep = " "
	}
	return &textSink{w: bufio.NewWriter(w), sep: sep}
}

func (s *textSink) Emit(e Event) error {
	var err error
	switch e.Kind {
	case Create:
		_, err = fmt.Fprintf(s.w, "CREATE:%sProcess %d entered the ready queue at time %d.\n", s.sep, e.PID, e.Time)
	case Run:
		_, err = fmt.Fprintf(s.w, "RUN:%sProcess %d started execution from level %d at time %d; wants to execute for %d ticks.\n", s.sep, e.PID, e.Level+1, e.Time, e.Remaining)
	case Queued:
		_, err = fmt.Fprintf(s.w, "QUEUED:%sProcess %d queued at level %d at time %d.\n", s.sep, e.PID, e.Level+1, e.Time)
	case IO:
		_, err = fmt.Fprintf(s.w, "I/O:%sProcess %d blocked for I/O at time %d.\n", s.sep, e.PID, e.Time)
	case Finished:
		_, err = fmt.Fprintf(s.w, "FINISHED:%sProcess %d finished at time %d.\n", s.sep, e.PID, e.Time)
	case Shutdown:
		_, err = fmt.Fprintf(s.w, "Scheduler shutdown at time %d.\n", e.Time)
	case ReportHeader:
		_, err = fmt.Fprintf(s.w, "\nTotal CPU usage for all processes scheduled:\n\n")
	case ReportRow:
		pid := fmt.Sprintf("%d", e.PID)
		if e.Null {
			pid = "<<null>>"
		}
		_, err = fmt.Fprintf(s.w, "Process %s :%s%d time units.\n", pid, s.sep, e.Usage)
	default:
		return fmt.Errorf("sink: unknown event kind %d", e.Kind)
	}
	if err != nil {
		return fmt.Errorf("sink: write: %w", err)
	}
	return s.w.Flush()
}
