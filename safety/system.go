package safety

import (
	"sync"
	"sync/atomic"

	"github.com/ferrodyne/rtcore/control"
	"github.com/ferrodyne/rtcore/core"
	"github.com/ferrodyne/rtcore/logger"
)

// AuditRecord is one level-transition entry, handed to an AuditSink.
type AuditRecord struct {
	Tick  uint64
	From  string
	To    string
	Event EventID
}

// AuditSink persists AuditRecords. A failed Record is logged at warn and
// dropped -- audit logging never blocks or fails a tick.
type AuditSink interface {
	Record(AuditRecord) error
}

type queuedEvent struct {
	event SafetyEvent
}

// SafetySystem is a flat safety-level state machine, run once per tick as
// a task.Runnable (it satisfies core.MainTaskLike). See Run for the
// per-tick algorithm.
type SafetySystem struct {
	levels []*SafetyLevel
	byName map[string]*SafetyLevel

	current atomic.Pointer[SafetyLevel]
	tick    uint64

	queueMu sync.Mutex
	queue   []queuedEvent

	audit AuditSink
	log   *logger.Logger
}

// New creates a SafetySystem with no levels. Call AddLevel for each level,
// then SetInitialLevel before Run is first called.
func New(log *logger.Logger) *SafetySystem {
	return &SafetySystem{
		byName: make(map[string]*SafetyLevel),
		log:    log.WithChannel("safety"),
	}
}

// SetAuditSink wires a durable transition log. Optional.
func (s *SafetySystem) SetAuditSink(sink AuditSink) {
	s.audit = sink
}

// AddLevel registers a new level, ordered after every previously added
// level; that registration order is what addEventToLevelAndAbove treats as
// "this level and above".
func (s *SafetySystem) AddLevel(name string) *SafetyLevel {
	l := NewLevel(name, len(s.levels))
	s.levels = append(s.levels, l)
	s.byName[name] = l
	return l
}

// SetInitialLevel designates the level active before the first tick.
func (s *SafetySystem) SetInitialLevel(name string) error {
	l, ok := s.byName[name]
	if !ok {
		return core.New(core.KindUnknownLevel, "unknown initial safety level '"+name+"'")
	}
	s.current.Store(l)
	return nil
}

// AddTransition declares that, while fromLevel is active, event transitions
// to targetLevel.
func (s *SafetySystem) AddTransition(fromLevel string, event SafetyEvent, targetLevel string) error {
	from, ok := s.byName[fromLevel]
	if !ok {
		return core.New(core.KindUnknownLevel, "unknown safety level '"+fromLevel+"'")
	}
	target, ok := s.byName[targetLevel]
	if !ok {
		return core.New(core.KindUnknownLevel, "unknown safety level '"+targetLevel+"'")
	}
	from.addTransition(event.ID, target)
	return nil
}

// AddEventToLevelAndAbove registers the same transition on fromLevel and
// every level with ordinal >= fromLevel's, per spec.md §4.6. Typically used
// for global escalation events (e.g. an e-stop event valid from any level
// at or above "on").
func (s *SafetySystem) AddEventToLevelAndAbove(fromLevel string, event SafetyEvent, targetLevel string) error {
	from, ok := s.byName[fromLevel]
	if !ok {
		return core.New(core.KindUnknownLevel, "unknown safety level '"+fromLevel+"'")
	}
	target, ok := s.byName[targetLevel]
	if !ok {
		return core.New(core.KindUnknownLevel, "unknown safety level '"+targetLevel+"'")
	}
	for _, l := range s.levels {
		if l.ordinal >= from.ordinal {
			l.addTransition(event.ID, target)
		}
	}
	return nil
}

// CurrentLevel returns the active level's name. Safe to call from any
// goroutine; reflects either the pre- or post-tick value, never an
// intermediate state, because it reads a single atomic pointer.
func (s *SafetySystem) CurrentLevel() string {
	if l := s.current.Load(); l != nil {
		return l.name
	}
	return ""
}

// Raise enqueues a public event for evaluation on the next tick. External
// callers (an operator console, an HTTP handler) use this and only this to
// influence the safety machine.
//
// Attempting to Raise a private event fails immediately with
// PrivateEventViolation -- the Go-idiomatic rendering of "violating this
// policy fails the tick": since raising happens out-of-band from any
// particular tick, the violation surfaces as an error return to the
// offending caller rather than as a tick-abort the caller could never
// observe.
func (s *SafetySystem) Raise(event SafetyEvent) error {
	if event.Visibility == Private {
		return core.New(core.KindPrivateEventViolation, "event '"+string(event.ID)+"' is private")
	}
	s.enqueue(event)
	return nil
}

func (s *SafetySystem) enqueue(event SafetyEvent) {
	s.queueMu.Lock()
	s.queue = append(s.queue, queuedEvent{event: event})
	s.queueMu.Unlock()
}

func (s *SafetySystem) drainQueue() []queuedEvent {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	drained := s.queue
	s.queue = nil
	return drained
}

// Run executes one tick: sample inputs, evaluate input actions, drain the
// event queue, invoke the current level's levelAction, drive critical
// outputs. It satisfies task.Runnable / core.MainTaskLike, so it is wired
// into the Executor via SetSafetySystem.
func (s *SafetySystem) Run() error {
	s.tick++
	level := s.current.Load()
	if level == nil {
		return core.New(core.KindEmptyTaskList, "safety system has no initial level set")
	}

	// Step 1: sample every input this level's actions reference, once,
	// before any of them are evaluated.
	samples := make([]control.Signal, len(level.inputs))
	for i, a := range level.inputs {
		if a.Input != nil {
			samples[i] = a.Input()
		}
	}

	// Step 2: evaluate in registration order; the first action that fires
	// enqueues its event and stops evaluation.
	for i, a := range level.inputs {
		if a.fires(samples[i]) {
			s.enqueue(a.Event)
			break
		}
	}

	// Step 3: drain the event queue FIFO, applying at most the transitions
	// the *current* level (which may change mid-drain) declares.
	fromLevel := level
	for _, qe := range s.drainQueue() {
		cur := s.current.Load()
		t, ok := cur.outgoing[qe.event.ID]
		if !ok {
			s.log.Warn("safety event dropped: no transition from current level",
				"level", cur.name, "event", qe.event.ID)
			continue
		}
		s.current.Store(t.target)
		s.recordTransition(fromLevel, t.target, qe.event.ID)
		fromLevel = t.target
	}

	// Step 4: invoke the current (post-drain) level's levelAction, every
	// tick it is active -- including the initial level, which is never
	// "entered" via a transition.
	final := s.current.Load()
	if final.levelAction != nil {
		if err := final.levelAction(&ActionContext{sys: s}); err != nil {
			s.log.Error("level action failed", "level", final.name, "error", err)
		}
	}

	// Step 5: drive critical outputs for the landed-on level.
	for _, ob := range final.outputs {
		ob.channel.Set(ob.value)
	}

	return nil
}

func (s *SafetySystem) recordTransition(from, to *SafetyLevel, event EventID) {
	if s.audit == nil {
		return
	}
	rec := AuditRecord{Tick: s.tick, From: from.name, To: to.name, Event: event}
	if err := s.audit.Record(rec); err != nil {
		s.log.Warn("safety audit write failed", "error", err)
	}
}
