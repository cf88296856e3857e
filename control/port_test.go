package control

import "testing"

func TestOutputPortGetSet(t *testing.T) {
	p := NewOutputPort("x")
	if got := p.Get(); got.Kind != KindFloat || got.Float != 0 {
		t.Errorf("unset output port should read as the zero Signal, got %+v", got)
	}

	p.Set(FloatSignal(3.5))
	got := p.Get()
	if got.Float != 3.5 {
		t.Errorf("expected 3.5, got %v", got.Float)
	}
}

func TestInputPortReadThrough(t *testing.T) {
	out := NewOutputPort("x")
	in := NewInputPort("y")

	if in.Connected() {
		t.Error("input should start unconnected")
	}

	in.Connect(out)
	if !in.Connected() {
		t.Error("input should report connected after Connect")
	}

	out.Set(BoolSignal(true))
	if got := in.Get(); !got.Bool {
		t.Errorf("expected input to read through to output's current value, got %+v", got)
	}

	out.Set(BoolSignal(false))
	if got := in.Get(); got.Bool {
		t.Error("input should observe the output's latest write, not a stale one")
	}
}

func TestUnconnectedInputReadsZeroSignal(t *testing.T) {
	in := NewInputPort("y")
	got := in.Get()
	if got.Kind != KindFloat || got.Float != 0 {
		t.Errorf("unconnected input should read as the zero Signal, got %+v", got)
	}
}
