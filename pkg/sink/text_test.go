package sink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSink_TabVariant(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want string
	}{
		{"create", Event{Kind: Create, PID: 1, Time: 0}, "CREATE:\tProcess 1 entered the ready queue at time 0.\n"},
		{"run", Event{Kind: Run, PID: 1, Level: 0, Time: 0, Remaining: 5}, "RUN:\tProcess 1 started execution from level 1 at time 0; wants to execute for 5 ticks.\n"},
		{"queued", Event{Kind: Queued, PID: 1, Level: 1, Time: 10}, "QUEUED:\tProcess 1 queued at level 2 at time 10.\n"},
		{"io", Event{Kind: IO, PID: 1, Time: 5}, "I/O:\tProcess 1 blocked for I/O at time 5.\n"},
		{"finished", Event{Kind: Finished, PID: 1, Time: 9}, "FINISHED:\tProcess 1 finished at time 9.\n"},
		{"shutdown", Event{Kind: Shutdown, Time: 9}, "Scheduler shutdown at time 9.\n"},
		{"report_header", Event{Kind: ReportHeader}, "\nTotal CPU usage for all processes scheduled:\n\n"},
		{"report_row", Event{Kind: ReportRow, PID: 1, Usage: 5}, "Process 1 :\t5 time units.\n"},
		{"report_row_null", Event{Kind: ReportRow, Null: true, Usage: 3}, "Process <<null>> :\t3 time units.\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewTextSink(&buf, VariantTab)
			require.NoError(t, s.Emit(tc.ev))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestTextSink_SpaceVariant(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf, VariantSpace)
	require.NoError(t, s.Emit(Event{Kind: Create, PID: 2, Time: 1}))
	assert.Equal(t, "CREATE: Process 2 entered the ready queue at time 1.\n", buf.String())
}

func TestTextSink_MultipleEventsAppend(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf, VariantTab)
	require.NoError(t, s.Emit(Event{Kind: Create, PID: 1, Time: 0}))
	require.NoError(t, s.Emit(Event{Kind: Finished, PID: 1, Time: 9}))
	assert.Equal(t, "CREATE:\tProcess 1 entered the ready queue at time 0.\nFINISHED:\tProcess 1 finished at time 9.\n", buf.String())
}
