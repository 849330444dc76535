package grpcstream_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/networks/observation/grpcstream"
)

func TestPublishDeliversFieldsPlusMetadata(t *testing.T) {
	p := grpcstream.NewPublisher()
	frames, cancel := p.Subscribe(1)
	defer cancel()

	require.NoError(t, p.Publish(250*time.Millisecond, map[int64]map[string]interface{}{
		1: {"velocity": 12.5},
	}))

	select {
	case frame := <-frames:
		fields := frame.AsMap()
		require.Equal(t, 12.5, fields["velocity"])
		require.Equal(t, float64(1), fields["agentId"])
		require.Equal(t, float64(250), fields["timeMs"])
	case <-time.After(time.Second):
		t.Fatal("expected a frame")
	}
}

func TestPublishDropsWhenSubscriberBufferFull(t *testing.T) {
	p := grpcstream.NewPublisher()
	frames, cancel := p.Subscribe(1)
	defer cancel()

	agents := map[int64]map[string]interface{}{1: {"velocity": 1.0}}
	require.NoError(t, p.Publish(0, agents))
	require.NoError(t, p.Publish(10*time.Millisecond, agents)) // buffer full, dropped

	<-frames
	select {
	case <-frames:
		t.Fatal("expected no second frame, buffer should have dropped it")
	case <-time.After(50 * time.Millisecond):
	}
}
