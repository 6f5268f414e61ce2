package chain

import (
	"context"
	"fmt"

	"image-processor/internal/models"
)

type ProcessingStep interface {
	Apply(ctx context.Context, input *models.PixelBuffer, settings models.FilterSettings) (*models.PixelBuffer, error)
	Name() string
	ShouldExecute(settings models.FilterSettings) bool
}

// ProgressFunc is called after each executed step with the number of
// executed steps so far and the number that will execute in total.
type ProgressFunc func(done, total int)

type ProcessingChain struct {
	steps []ProcessingStep
}

func NewProcessingChain(steps []ProcessingStep) *ProcessingChain {
	return &ProcessingChain{
		steps: steps,
	}
}

// Execute runs every step whose ShouldExecute is true, feeding each step the
// previous step's output. The input buffer is never handed back: when no step
// runs the result is a copy.
func (pc *ProcessingChain) Execute(ctx context.Context, input *models.PixelBuffer, settings models.FilterSettings, progress ProgressFunc) (*models.PixelBuffer, error) {
	active := pc.ActiveSteps(settings)
	total := len(active)

	current := input
	for i, step := range active {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, err := step.Apply(ctx, current, settings)
		if err != nil {
			return nil, fmt.Errorf("step %s failed: %w", step.Name(), err)
		}

		current = result
		if progress != nil {
			progress(i+1, total)
		}
	}

	if current == input {
		return input.Clone(), nil
	}
	return current, nil
}

// ActiveSteps returns the steps that would execute for settings, in order.
func (pc *ProcessingChain) ActiveSteps(settings models.FilterSettings) []ProcessingStep {
	active := make([]ProcessingStep, 0, len(pc.steps))
	for _, step := range pc.steps {
		if step.ShouldExecute(settings) {
			active = append(active, step)
		}
	}
	return active
}

func (pc *ProcessingChain) GetStepNames() []string {
	names := make([]string, len(pc.steps))
	for i, step := range pc.steps {
		names[i] = step.Name()
	}
	return names
}
