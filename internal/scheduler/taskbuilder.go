package scheduler

import "time"

// TaskBuilder separates task construction into one named method per
// taxonomy slot instead of one undifferentiated slice, mirroring
// `taskBuilder.h`'s bootstrap/spawning/synchronize/finalize/pre-agent
// separation. Each method's returned tasks are ready to hand to
// ScheduleNewRecurringTasks/ScheduleNewNonRecurringTasks or, for
// bootstrap/finalize, directly to Invocation.
type TaskBuilder struct {
	FrameworkRate time.Duration
}

// CreateBootstrapTasks builds the one-shot pre-run tasks.
func (b TaskBuilder) CreateBootstrapTasks(triggerPreRunSpawn func(now time.Duration) error) []*Task {
	return []*Task{{
		Kind: KindBootstrap,
		Name: "pre-run-spawn",
		Run:  triggerPreRunSpawn,
	}}
}

// CreateSpawningTasks builds the recurring runtime spawn-point trigger,
// fired every framework tick.
func (b TaskBuilder) CreateSpawningTasks(triggerRuntimeSpawn func(now time.Duration) error) []*Task {
	return []*Task{{
		Kind:      KindSpawning,
		Name:      "runtime-spawn",
		CycleTime: b.FrameworkRate,
		Priority:  100,
		Run:       triggerRuntimeSpawn,
	}}
}

// CreatePreAgentTasks builds the global-publish/event-detector/
// manipulator trio, ordered by descending
// priority so publish runs before detectors, which run before
// manipulators, within the same tick.
func (b TaskBuilder) CreatePreAgentTasks(publishGlobalData, runDetectors, runManipulators func(now time.Duration) error) []*Task {
	return []*Task{
		{Kind: KindPreAgent, Name: "publish-global-data", CycleTime: b.FrameworkRate, Priority: 90, Run: publishGlobalData},
		{Kind: KindPreAgent, Name: "event-detectors", CycleTime: b.FrameworkRate, Priority: 80, Run: runDetectors},
		{Kind: KindPreAgent, Name: "manipulators", CycleTime: b.FrameworkRate, Priority: 70, Run: runManipulators},
	}
}

// CreateSynchronizeTasks builds the observation-update and world-sync
// pair. Observation is given the lowest
// priority in this slot so it runs last.
func (b TaskBuilder) CreateSynchronizeTasks(worldSync, observationUpdate func(now time.Duration) error) []*Task {
	return []*Task{
		{Kind: KindSynchronize, Name: "world-sync", CycleTime: b.FrameworkRate, Priority: 10, Run: worldSync},
		{Kind: KindSynchronize, Name: "observation-update", CycleTime: b.FrameworkRate, Priority: 0, Run: observationUpdate},
	}
}

// CreateFinalizeTasks builds the one-shot post-loop tasks.
func (b TaskBuilder) CreateFinalizeTasks(finalizeRun func(now time.Duration) error) []*Task {
	return []*Task{{
		Kind: KindFinalize,
		Name: "finalize-run",
		Run:  finalizeRun,
	}}
}

// CreateAgentComponentTasks builds one trigger+update task pair per
// component: non-recurring (isInit) components go through
// ScheduleNewNonRecurringTasks, everything else through
// ScheduleNewRecurringTasks.
func (b TaskBuilder) CreateAgentComponentTasks(agentID int64, componentName string, isInit bool, cycleTime, offsetTime, responseTime time.Duration, priority int, runTrigger, runUpdate func(now time.Duration) error) []*Task {
	kind := KindRecurringAgent
	if isInit {
		kind = KindNonRecurringAgent
	}
	trigger := &Task{
		Kind: kind, AgentID: agentID, Name: componentName + ":trigger",
		CycleTime: cycleTime, OffsetTime: offsetTime, Priority: priority,
		Run: runTrigger,
	}
	update := &Task{
		Kind: kind, AgentID: agentID, Name: componentName + ":update",
		CycleTime: cycleTime, OffsetTime: offsetTime + responseTime, Priority: priority,
		Run: runUpdate,
	}
	return []*Task{trigger, update}
}
