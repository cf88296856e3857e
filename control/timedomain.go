package control

// TimeDomain is an ordered sequence of Blocks sharing a period and a
// realtime flag, executed as a unit by the scheduler. The order in which
// blocks were added is the order in which they are run each tick; callers
// are responsible for ensuring that order is a valid topological order
// with respect to port connections -- the engine does not validate it,
// per spec (structural cycles on back-edges are expected and tolerated
// with one-period staleness).
//
// Fluent construction mirrors the teacher's builder pattern (chained
// State()/On() calls), adapted from building a state tree to building an
// ordered block list.
type TimeDomain struct {
	name     string
	period   float64
	realtime bool
	blocks   []Block
}

// NewTimeDomain creates an empty TimeDomain.
func NewTimeDomain(name string, period float64, realtime bool) *TimeDomain {
	return &TimeDomain{name: name, period: period, realtime: realtime}
}

// Add appends a Block to the end of the domain's run order and returns the
// domain, so construction can be chained.
func (d *TimeDomain) Add(b Block) *TimeDomain {
	d.blocks = append(d.blocks, b)
	return d
}

// Name returns the domain's diagnostic name.
func (d *TimeDomain) Name() string { return d.name }

// Period returns the domain's configured period in seconds.
func (d *TimeDomain) Period() float64 { return d.period }

// Realtime reports whether the domain should be scheduled realtime; a
// realtime TimeDomain inherits that flag into the Periodic descriptor the
// executor builds for it.
func (d *TimeDomain) Realtime() bool { return d.realtime }

// Blocks returns the ordered block list (for diagnostics/visualization).
func (d *TimeDomain) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// Run invokes every Block's Run in insertion order, stopping at the first
// error.
func (d *TimeDomain) Run() error {
	for _, b := range d.blocks {
		if err := b.Run(); err != nil {
			return err
		}
	}
	return nil
}
