package dataflow

// Channel is a point-to-point carrier from one source output port to one
// or more target input ports. The channel itself
// owns nothing; it only records the wiring used by Connect.
type Channel struct {
	LinkID  int
	Source  *OutputPort
	Targets []*InputPort
}

// Connect wires source's buffer into every target input port and
// returns the Channel describing that wiring. LinkID must match across
// the source and every target.
func Connect(source *OutputPort, targets ...*InputPort) *Channel {
	for _, t := range targets {
		t.source = source.Buffer
	}
	return &Channel{
		LinkID:  source.LinkID,
		Source:  source,
		Targets: targets,
	}
}
