package grpcstream

// SlavePreHook runs once before any invocation.
func (s *Server) SlavePreHook() error { return nil }

// SlavePreRunHook runs at the start of each invocation.
func (s *Server) SlavePreRunHook() error { return nil }

// SlaveUpdateHook is called from the observation task slot every tick;
// runResult carries the per-agent field maps produced by
// AgentNetwork.PublishGlobalData for this tick.
func (s *Server) SlaveUpdateHook(timeMs int64, runResult interface{}) error {
	fields, ok := runResult.(map[int64]map[string]interface{})
	if !ok {
		return nil
	}
	return s.publisher.Publish(msToDuration(timeMs), fields)
}

// SlavePostRunHook runs at the end of each invocation.
func (s *Server) SlavePostRunHook(runResult interface{}) error { return nil }

// SlavePostHook runs once after all invocations.
func (s *Server) SlavePostHook() error { return nil }
