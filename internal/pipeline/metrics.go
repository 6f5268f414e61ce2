package pipeline

import (
	"sort"
	"sync"
	"time"
)

// Timings collects per-stage durations across pipeline runs.
type Timings struct {
	mu      sync.RWMutex
	timings map[string][]time.Duration
}

func NewTimings() *Timings {
	return &Timings{
		timings: make(map[string][]time.Duration),
	}
}

func (t *Timings) Record(stage string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timings[stage] = append(t.timings[stage], d)
}

func (t *Timings) Get(stage string) []time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	timings := t.timings[stage]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (t *Timings) Average(stage string) time.Duration {
	timings := t.Get(stage)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range timings {
		total += d
	}
	return total / time.Duration(len(timings))
}

// Stages returns the recorded stage names, sorted.
func (t *Timings) Stages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stages := make([]string, 0, len(t.timings))
	for stage := range t.timings {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	return stages
}
