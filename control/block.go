package control

// Block is the opaque unit of dataflow: one Run per period, plus whatever
// named input/output ports the concrete implementation exposes. The core
// never inspects port wiring itself -- it trusts the TimeDomain's
// insertion order to already be a valid topological order, per spec.
type Block interface {
	Name() string
	Run() error
}

// Base provides the Name() half of Block so concrete blocks only need to
// implement Run().
type Base struct {
	BlockName string
}

func (b Base) Name() string { return b.BlockName }

// LambdaBlock adapts a plain function into a Block, for tests and for
// wiring trivial glue (counters, constants) without a dedicated type. It
// carries no ports of its own.
type LambdaBlock struct {
	Base
	Fn func() error
}

// NewLambdaBlock creates a Block named name that runs fn each tick.
func NewLambdaBlock(name string, fn func() error) *LambdaBlock {
	return &LambdaBlock{Base: Base{BlockName: name}, Fn: fn}
}

func (l *LambdaBlock) Run() error {
	if l.Fn == nil {
		return nil
	}
	return l.Fn()
}
