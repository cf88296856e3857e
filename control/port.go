package control

import "sync/atomic"

// OutputPort holds the current Signal written by the Block that owns it.
// Reads and writes go through an atomic pointer so cross-thread accesses
// (a slower TimeDomain reading a faster one's output) are at least
// word-atomic without a per-port mutex, per the one-period-staleness
// tolerance the scheduler allows.
type OutputPort struct {
	name  string
	value atomic.Pointer[Signal]
}

// NewOutputPort creates a named, initially-unset output port.
func NewOutputPort(name string) *OutputPort {
	return &OutputPort{name: name}
}

// Name returns the port's diagnostic name.
func (o *OutputPort) Name() string { return o.name }

// Set publishes a new Signal value.
func (o *OutputPort) Set(s Signal) {
	o.value.Store(&s)
}

// Get reads the current Signal. Returns the zero Signal if never set.
func (o *OutputPort) Get() Signal {
	if p := o.value.Load(); p != nil {
		return *p
	}
	return Signal{}
}

// InputPort is a read-through lookup into another Block's OutputPort.
// Connecting an input to an output is just storing the reference; the
// input observes whatever value the output currently holds at run time,
// which is why block order within a TimeDomain defines visibility: no
// block observes its own output within the same tick.
type InputPort struct {
	name string
	src  *OutputPort
}

// NewInputPort creates a named, initially-unconnected input port.
func NewInputPort(name string) *InputPort {
	return &InputPort{name: name}
}

// Name returns the port's diagnostic name.
func (i *InputPort) Name() string { return i.name }

// Connect binds this input to an upstream output port.
func (i *InputPort) Connect(src *OutputPort) {
	i.src = src
}

// Connected reports whether Connect has been called.
func (i *InputPort) Connected() bool { return i.src != nil }

// Get reads through to the connected output. Returns the zero Signal if
// unconnected.
func (i *InputPort) Get() Signal {
	if i.src == nil {
		return Signal{}
	}
	return i.src.Get()
}
