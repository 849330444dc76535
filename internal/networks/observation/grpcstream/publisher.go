package grpcstream

import (
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Publisher fans out per-agent observation frames to every currently
// subscribed observer. Each frame is a self-describing protobuf Struct — no fixed
// schema is needed on the wire since signal kinds vary by agent and
// scenario — carrying "agentId" and "timeMs" alongside
// whatever fields PublishGlobalData supplied.
type Publisher struct {
	mu   sync.Mutex
	subs map[chan *structpb.Struct]struct{}
}

// NewPublisher returns an empty fan-out publisher.
func NewPublisher() *Publisher {
	return &Publisher{subs: map[chan *structpb.Struct]struct{}{}}
}

// Subscribe registers a new subscriber channel; the returned cancel func
// unsubscribes and closes it.
func (p *Publisher) Subscribe(buffer int) (<-chan *structpb.Struct, func()) {
	ch := make(chan *structpb.Struct, buffer)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()
	return ch, func() {
		p.mu.Lock()
		delete(p.subs, ch)
		p.mu.Unlock()
		close(ch)
	}
}

// Publish builds one protobuf Struct per agent and fans it out
// non-blocking: a subscriber whose buffer is full drops the frame rather
// than stalling the scheduling thread.
func (p *Publisher) Publish(t time.Duration, agentFields map[int64]map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.subs) == 0 {
		return nil
	}
	for agentID, fields := range agentFields {
		withMeta := make(map[string]interface{}, len(fields)+2)
		for k, v := range fields {
			withMeta[k] = v
		}
		withMeta["agentId"] = float64(agentID)
		withMeta["timeMs"] = float64(t.Milliseconds())

		s, err := structpb.NewStruct(withMeta)
		if err != nil {
			return err
		}
		for ch := range p.subs {
			select {
			case ch <- s:
			default:
				diagf("observation subscriber buffer full, dropping frame for agent %d at t=%s", agentID, t)
			}
		}
	}
	return nil
}
