package trajectoryfollower

import "time"

// ConfigFromArgs assembles a Config from a library descriptor's untyped
// args bag, as decoded from a JSON/YAML scenario file. The trajectory is
// read from args["trajectory"], a list of {timeMs, x, y, yaw} entries;
// missing or malformed entries are skipped rather than failing the whole
// spawn, since CreateInstance rejects an empty trajectory anyway.
func ConfigFromArgs(args map[string]interface{}, cycle time.Duration) Config {
	cfg := Config{CycleTime: cycle}
	raw, ok := args["trajectory"].([]interface{})
	if !ok {
		return cfg
	}
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		cfg.Trajectory = append(cfg.Trajectory, TrajectoryPoint{
			TimeMs: int64(numArg(m, "timeMs")),
			X:      numArg(m, "x"),
			Y:      numArg(m, "y"),
			Yaw:    numArg(m, "yaw"),
		})
	}
	return cfg
}

func numArg(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
