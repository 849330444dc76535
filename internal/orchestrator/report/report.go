package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/openpass-sim/kernel/internal/orchestrator"
)

// Summary is the JSON-exportable digest of one experiment's invocations.
type Summary struct {
	NumberOfInvocations int                `json:"numberOfInvocations"`
	Success             bool               `json:"success"`
	Invocations         []InvocationResult `json:"invocations"`
}

// InvocationResult mirrors one orchestrator.RunResult, trimmed to the
// fields worth reporting.
type InvocationResult struct {
	InvocationID   string  `json:"invocationId"`
	Invocation     int     `json:"invocation"`
	Seed           uint32  `json:"seed"`
	EndTimeSeconds float64 `json:"endTimeSeconds"`
	IsEndCondition bool    `json:"isEndCondition"`
	AgentCount     int     `json:"agentCount"`
	RemovedCount   int     `json:"removedCount"`
	EventCount     int     `json:"eventCount"`
	Error          string  `json:"error,omitempty"`
}

// Build converts the orchestrator's raw run results into a Summary.
func Build(success bool, results []orchestrator.RunResult) Summary {
	s := Summary{NumberOfInvocations: len(results), Success: success}
	for _, r := range results {
		ir := InvocationResult{
			InvocationID:   r.InvocationID,
			Invocation:     r.Invocation,
			Seed:           r.Seed,
			EndTimeSeconds: r.EndTime.Seconds(),
			IsEndCondition: r.IsEndCondition,
			AgentCount:     r.AgentCount,
			RemovedCount:   r.RemovedCount,
			EventCount:     r.EventCount,
		}
		if r.Err != nil {
			ir.Error = r.Err.Error()
		}
		s.Invocations = append(s.Invocations, ir)
	}
	return s
}

// WriteJSON writes the summary as indented JSON to dir/summary.json.
func WriteJSON(s Summary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, "summary.json")
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}

// stamp returns the current wall-clock time for report filenames. Kept as
// a function so callers in tests can avoid depending on real time.
var stamp = time.Now
