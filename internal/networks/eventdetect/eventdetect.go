package eventdetect

import "github.com/openpass-sim/kernel/internal/events"

// Detector is the capability interface a bound event-detector library
// implementation satisfies.
type Detector interface {
	Detect(timeMs int64) ([]events.Event, error)
}

// Network runs every instantiated detector, in configured order, ahead
// of the manipulator pass.
type Network struct {
	detectors []Detector
}

// NewNetwork wraps an already-instantiated set of detector modules.
func NewNetwork(detectors []Detector) *Network {
	return &Network{detectors: detectors}
}

// RunDetectors calls each detector and publishes its events into net, in
// detector-list order.
func (n *Network) RunDetectors(net *events.EventNetwork, timeMs int64) error {
	for _, d := range n.detectors {
		evs, err := d.Detect(timeMs)
		if err != nil {
			return err
		}
		for _, ev := range evs {
			net.Publish(ev)
		}
	}
	return nil
}
