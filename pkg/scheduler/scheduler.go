// Package scheduler implements the multi-level feedback queue core: the
// virtual clock loop, the three interacting priority queues (arrival,
// ready, io) plus the report queue, and the priority-feedback
// demotion/promotion policy driven by per-process quantum and burst
// counters. It is the hard part of the simulator; correctness here is
// defined by the precise interleaving of counter updates, queue
// transitions, and event emission, so the tick loop follows the fixed
// five-step order exactly rather than any functionally-equivalent
// reordering.
package scheduler

import (
	"github.com/sirupsen/logrus"

	"github.com/piergabory/mlqfs/internal/pqueue"
	"github.com/piergabory/mlqfs/pkg/sink"
)

// Scheduler owns the four queues, the virtual clock, the null-process
// accumulator, and drives the tick loop to completion. The zero value is
// not usable; construct with New.
type Scheduler struct {
	arrival *pqueue.Queue[Process]
	ready   *pqueue.Queue[Process]
	io      *pqueue.Queue[Process]
	report  *pqueue.Queue[Process]

	clock     int
	nullUsage int

	sink sink.Sink
	log  *logrus.Logger
}

// New returns a Scheduler that emits its trace to s and logs internal
// tracing to log. If log is nil, logrus.StandardLogger() is used.
func New(s sink.Sink, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{sink: s, log: log}
}

// Initialize seeds the arrival queue with the loader's ordered process set
// and starts the clock at 0.
func (s *Scheduler) Initialize(workload []Process) {
	s.arrival = pqueue.New[Process]()
	for _, p := range workload {
		s.arrival.Push(p, p.ArrivalTime)
	}
	s.ready = pqueue.New[Process]()
	s.io = pqueue.New[Process]()
	s.report = pqueue.New[Process]()
	s.clock = 0
	s.nullUsage = 0
}

// Clock returns the current virtual time. It is intended for tests and
// debugging; the scheduler itself never exposes it to the sink directly
// except embedded in emitted Events.
func (s *Scheduler) Clock() int { return s.clock }

// NullCPUUsage returns the number of ticks the CPU has idled so far.
func (s *Scheduler) NullCPUUsage() int { return s.nullUsage }

// active reports whether any of the three live queues still holds a
// process; the loop terminates when all three are simultaneously empty.
func (s *Scheduler) active() bool {
	return s.arrival.Len() > 0 || s.ready.Len() > 0 || s.io.Len() > 0
}

// RunToCompletion drives ticks until no queue holds a live process, then
// emits the shutdown event and the final report via the sink.
func (s *Scheduler) RunToCompletion() {
	for s.active() {
		s.quantumCheck()
		s.admitNewProcesses()
		s.scheduleProcesses()
		s.run()
		s.clock++
	}

	// The loop's final increment overshoots the tick on which the
	// scheduler actually went idle; roll it back before reporting.
	s.clock--

	s.emit(sink.Event{Kind: sink.Shutdown, Time: s.clock})
	s.emitReport()
}

// quantumCheck is tick step (1): the head of ready accrues one tick toward
// its quantum, and is preempted via halt if that exhausts the quantum for
// its level. This happens before admission so a process that just spent
// its last tick is rotated out before newcomers are considered.
func (s *Scheduler) quantumCheck() {
	if s.ready.Len() == 0 {
		return
	}

	p, _ := s.ready.PeekHead()
	p.Quanta++
	s.ready.UpdateHead(p)

	level, _ := s.ready.HeadPriority()
	if p.Quanta >= Quantum[level] {
		s.halt()
	}
}

// halt implements quantum expiry (§4.5): pop the head, bump its demotion
// counter, demote a level once the threshold is met, and push it back.
func (s *Scheduler) halt() {
	level, _ := s.ready.HeadPriority()
	p, _ := s.ready.PopHead()

	p.Demotion++
	p.Promotion = 0
	p.Quanta = 0

	if p.Demotion >= Demotion[level] && level != MinPriority {
		level++
		p.Demotion = 0
	}

	s.ready.Push(p, level)
	s.log.WithFields(logrus.Fields{"pid": p.PID, "level": level, "time": s.clock}).Debug("halt")
	s.emit(sink.Event{Kind: sink.Queued, PID: p.PID, Level: level, Time: s.clock})
}

// admitNewProcesses is tick step (2): move eligible arrivals and I/O
// returns into ready, then log a preemption if doing so displaced the
// process that was at the head of ready before admission.
func (s *Scheduler) admitNewProcesses() {
	var incumbentPID int
	var incumbentLevel int
	hadIncumbent := false
	if s.ready.Len() > 0 {
		incumbent, _ := s.ready.PeekHead()
		incumbentPID = incumbent.PID
		incumbentLevel, _ = s.ready.HeadPriority()
		hadIncumbent = true
	}

	for s.arrival.Len() > 0 {
		at, _ := s.arrival.HeadPriority()
		if at > s.clock {
			break
		}
		p, _ := s.arrival.PopHead()
		s.ready.Push(p, MaxPriority)
		s.emit(sink.Event{Kind: sink.Create, PID: p.PID, Time: s.clock})
	}

	for s.io.Len() > 0 {
		wake, _ := s.io.HeadPriority()
		if wake > s.clock {
			break
		}
		p, _ := s.io.PopHead()
		s.ready.Push(p, p.PriorityCache)
		s.emit(sink.Event{Kind: sink.Queued, PID: p.PID, Level: p.PriorityCache, Time: s.clock})
	}

	if hadIncumbent && s.ready.Len() > 0 {
		head, _ := s.ready.PeekHead()
		if head.PID != incumbentPID {
			s.emit(sink.Event{Kind: sink.Queued, PID: incumbentPID, Level: incumbentLevel, Time: s.clock})
		}
	}
}

// scheduleProcesses is tick step (3): normalize the head of ready so it is
// actually eligible to run this tick, acting repeatedly on the head until
// it is (terminate, advance behaviour, dispatch to I/O) or the queue
// empties.
func (s *Scheduler) scheduleProcesses() {
	for s.ready.Len() > 0 {
		p, _ := s.ready.PeekHead()
		level, _ := s.ready.HeadPriority()
		b := p.CurrentBehaviour()

		switch {
		case len(p.Behaviours) == 1 && p.Progress == b.Repeats:
			// The sole remaining Behaviour's repeats were exhausted by the
			// send-to-I/O that brought Progress up to Repeats and reset
			// Units to 0; after the process returns from that I/O, one more
			// tick is owed before the process can terminate. No RUN is
			// emitted while it waits out that tick.
			if p.Units < 1 {
				return
			}
			p, _ = s.ready.PopHead()
			p.Behaviours = nil
			s.report.Push(p, p.TotalCPUUsage)
			s.emit(sink.Event{Kind: sink.Finished, PID: p.PID, Time: s.clock})
			continue

		case len(p.Behaviours) > 1 && p.Progress >= b.Repeats:
			p.Behaviours = p.Behaviours[1:]
			p.Progress = 0
			s.ready.UpdateHead(p)
			continue

		case p.Units >= b.CPUTime:
			s.sendToIO(level)
			continue

		default:
			if p.Quanta == 0 {
				s.emit(sink.Event{
					Kind:      sink.Run,
					PID:       p.PID,
					Level:     level,
					Time:      s.clock,
					Remaining: b.CPUTime - p.Units,
				})
			}
			return
		}
	}
}

// sendToIO implements burst completion (§4.6.1): pop the head, bump its
// promotion counter, promote a level once the threshold is met, cache the
// resulting level for its return from I/O, and push it into io keyed by
// wake time.
func (s *Scheduler) sendToIO(level int) {
	p, _ := s.ready.PopHead()
	b := p.CurrentBehaviour()

	p.Promotion++
	p.Demotion = 0

	if p.Promotion >= Promotion[level] && level != MaxPriority {
		level--
		p.Promotion = 0
	}

	p.PriorityCache = level
	p.Progress++
	p.Units = 0
	p.Quanta = 0

	s.io.Push(p, s.clock+b.IOTime)
	s.log.WithFields(logrus.Fields{"pid": p.PID, "time": s.clock}).Debug("send-to-io")
	s.emit(sink.Event{Kind: sink.IO, PID: p.PID, Time: s.clock})
}

// run is tick step (4): grant one tick of CPU to the head of ready, or
// accumulate a null-process tick if ready is empty. The quantum counter
// was already advanced by quantumCheck; it is not touched here.
func (s *Scheduler) run() {
	if s.ready.Len() == 0 {
		s.nullUsage++
		return
	}

	p, _ := s.ready.PeekHead()
	p.Units++
	p.TotalCPUUsage++
	s.ready.UpdateHead(p)
}

// emitReport drains the report queue in key order. If the null process was
// ever scheduled, its accumulated usage is first pushed into that queue,
// keyed by usage like any other row.
func (s *Scheduler) emitReport() {
	if s.nullUsage > 0 {
		s.report.Push(Process{PID: 0, TotalCPUUsage: s.nullUsage}, s.nullUsage)
	}

	s.emit(sink.Event{Kind: sink.ReportHeader})

	for s.report.Len() > 0 {
		p, _ := s.report.PopHead()
		s.emit(sink.Event{
			Kind:  sink.ReportRow,
			PID:   p.PID,
			Usage: p.TotalCPUUsage,
			Null:  p.PID == 0,
		})
	}
}

func (s *Scheduler) emit(e sink.Event) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Emit(e); err != nil {
		s.log.WithError(err).Error("sink emit failed")
	}
}
