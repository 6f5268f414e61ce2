package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processor/internal/models"
)

// addStep adds delta to the first byte when its filter is enabled.
type addStep struct {
	name  string
	delta byte
	err   error
}

func (s *addStep) Name() string { return s.name }

func (s *addStep) ShouldExecute(settings models.FilterSettings) bool {
	return settings.Enabled(s.name)
}

func (s *addStep) Apply(_ context.Context, input *models.PixelBuffer, _ models.FilterSettings) (*models.PixelBuffer, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := input.Clone()
	out.Pix[0] += s.delta
	return out, nil
}

func newBuffer(t *testing.T) *models.PixelBuffer {
	t.Helper()
	buf, err := models.NewPixelBuffer(1, 1)
	require.NoError(t, err)
	return buf
}

func TestExecuteRunsActiveStepsInOrder(t *testing.T) {
	pc := NewProcessingChain([]ProcessingStep{
		&addStep{name: models.FilterBrightness, delta: 1},
		&addStep{name: models.FilterSepia, delta: 10},
		&addStep{name: models.FilterBlur, delta: 100},
	})

	settings := models.DefaultFilterSettings()
	settings.Brightness = 120
	settings.Blur = 3

	var calls [][2]int
	input := newBuffer(t)
	out, err := pc.Execute(context.Background(), input, settings, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, byte(101), out.Pix[0])
	assert.Equal(t, byte(0), input.Pix[0])
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
	assert.Len(t, pc.ActiveSteps(settings), 2)
}

func TestExecuteWithoutActiveStepsReturnsCopy(t *testing.T) {
	pc := NewProcessingChain([]ProcessingStep{&addStep{name: models.FilterSepia, delta: 1}})
	input := newBuffer(t)

	out, err := pc.Execute(context.Background(), input, models.DefaultFilterSettings(), nil)
	require.NoError(t, err)
	assert.True(t, out.Equal(input))
	assert.NotSame(t, input, out)
}

func TestExecuteWrapsStepError(t *testing.T) {
	boom := errors.New("boom")
	pc := NewProcessingChain([]ProcessingStep{&addStep{name: models.FilterSepia, err: boom}})

	settings := models.DefaultFilterSettings()
	settings.Sepia = 50
	_, err := pc.Execute(context.Background(), newBuffer(t), settings, nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step sepia failed")
}

func TestExecuteStopsOnCancelledContext(t *testing.T) {
	pc := NewProcessingChain([]ProcessingStep{&addStep{name: models.FilterSepia, delta: 1}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	settings := models.DefaultFilterSettings()
	settings.Sepia = 50
	_, err := pc.Execute(ctx, newBuffer(t), settings, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetStepNames(t *testing.T) {
	pc := NewProcessingChain([]ProcessingStep{
		&addStep{name: models.FilterBlur},
		&addStep{name: models.FilterSepia},
	})
	assert.Equal(t, []string{"blur", "sepia"}, pc.GetStepNames())
	assert.Empty(t, NewProcessingChain(nil).GetStepNames())
}
