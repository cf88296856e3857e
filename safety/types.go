// Package safety implements the flat safety-level state machine: levels,
// input actions that sample critical inputs and fire events, and
// transitions gated by event visibility.
//
// Grounded on the teacher's flat State/Transition model (statechart.go):
// SafetyLevel is the adapted State, its outgoing map is the adapted
// Transitions list keyed by event, levelAction is the adapted EntryAction.
// The hierarchical CompoundState/LCCA machinery the teacher uses for
// nested regions has no counterpart here -- safety levels are flat, so
// none of that is carried over.
package safety

import (
	"github.com/ferrodyne/rtcore/control"
)

// Visibility controls who may enqueue a SafetyEvent. Public events may be
// raised by any caller; Private events may only be enqueued from inside
// this SafetySystem's own input or level actions.
type Visibility int

const (
	Public Visibility = iota
	Private
)

func (v Visibility) String() string {
	if v == Private {
		return "private"
	}
	return "public"
}

// EventID names a transition trigger.
type EventID string

// SafetyEvent is a transition trigger tagged with its visibility.
type SafetyEvent struct {
	ID         EventID
	Visibility Visibility
}

// NewPublicEvent builds an event any caller may enqueue.
func NewPublicEvent(id EventID) SafetyEvent {
	return SafetyEvent{ID: id, Visibility: Public}
}

// NewPrivateEvent builds an event only this SafetySystem's own actions may
// enqueue.
func NewPrivateEvent(id EventID) SafetyEvent {
	return SafetyEvent{ID: id, Visibility: Private}
}

// ActionContext is handed to a LevelAction so it can enqueue further
// private events without closing over SafetySystem's mutable state
// directly -- the "callback reference + opaque context" shape spec.md's
// design notes call for in place of a bare closure.
type ActionContext struct {
	sys *SafetySystem
}

// EnqueuePrivate queues a private event for evaluation on the next tick.
func (c *ActionContext) EnqueuePrivate(id EventID) {
	c.sys.enqueue(NewPrivateEvent(id))
}

// LevelAction is an optional callback invoked each tick while its level is
// active, with a handle for enqueuing further private events. Unlike an
// on-entry action, it fires every tick the level is current -- including
// the level set as the machine's initial level, which is never "entered"
// via a transition -- so a level can auto-advance itself (e.g. the initial
// level immediately raising the event that takes it somewhere else).
type LevelAction func(ctx *ActionContext) error

// InputActionKind selects how an InputAction decides whether it fires.
type InputActionKind int

const (
	// ActionIgnore never fires; it exists so a level can declare an input
	// is sampled but intentionally not acted on.
	ActionIgnore InputActionKind = iota
	// ActionCheck fires when Check returns true for the sampled Signal.
	ActionCheck
	// ActionRangeCheck fires when the sampled Signal's Float value falls
	// outside [Min, Max].
	ActionRangeCheck
)

// InputAction is one input-sampling rule evaluated, in registration order,
// against the current level each tick. The first action whose fires()
// returns true enqueues its Event and stops that tick's evaluation.
type InputAction struct {
	Name  string
	Kind  InputActionKind
	Input func() control.Signal
	Check func(control.Signal) bool
	Min   float64
	Max   float64
	Event SafetyEvent
}

// fires decides, against a Signal already sampled this tick (see
// SafetySystem.Run step 1), whether this action should enqueue its Event.
func (a *InputAction) fires(sample control.Signal) bool {
	switch a.Kind {
	case ActionCheck:
		return a.Check != nil && a.Check(sample)
	case ActionRangeCheck:
		return sample.Float < a.Min || sample.Float > a.Max
	default:
		return false
	}
}

// transition is one declared (event -> target level) edge out of a level.
type transition struct {
	target *SafetyLevel
}

// SafetyLevel is one state of the safety machine: its input actions (tried
// in order each tick), its outgoing event transitions, and an optional
// action run every tick it is active.
type SafetyLevel struct {
	name        string
	ordinal     int
	inputs      []*InputAction
	outgoing    map[EventID]transition
	levelAction LevelAction

	outputs []outputBinding
}

// outputBinding drives one critical output to a fixed Signal whenever this
// level is active -- the (level, output) action table of spec.md §4.6 step 5.
type outputBinding struct {
	channel *control.OutputPort
	value   control.Signal
}

// NewLevel creates a named SafetyLevel. Levels are ordered by the sequence
// in which they are created, which is the ordering addEventToLevelAndAbove
// uses for "this level and above".
func NewLevel(name string, ordinal int) *SafetyLevel {
	return &SafetyLevel{name: name, ordinal: ordinal, outgoing: make(map[EventID]transition)}
}

// Name returns the level's diagnostic name.
func (l *SafetyLevel) Name() string { return l.name }

// AddInputAction appends an input action to be evaluated, in registration
// order, every tick this level is active.
func (l *SafetyLevel) AddInputAction(a *InputAction) {
	l.inputs = append(l.inputs, a)
}

// SetLevelAction sets the action run every tick this level is current.
func (l *SafetyLevel) SetLevelAction(a LevelAction) {
	l.levelAction = a
}

// DriveOutput declares that, while this level is active, the given output
// port should be continuously set to value on every tick.
func (l *SafetyLevel) DriveOutput(port *control.OutputPort, value control.Signal) {
	l.outputs = append(l.outputs, outputBinding{channel: port, value: value})
}

func (l *SafetyLevel) addTransition(event EventID, target *SafetyLevel) {
	l.outgoing[event] = transition{target: target}
}
