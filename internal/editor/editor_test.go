package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processor/internal/models"
	"image-processor/internal/pipeline"
)

func baseBuffer(t *testing.T) *models.PixelBuffer {
	t.Helper()
	buf, err := models.NewPixelBuffer(4, 3)
	require.NoError(t, err)
	for i := range buf.Pix {
		buf.Pix[i] = byte(i * 17)
	}
	return buf
}

func render(t *testing.T, base *models.PixelBuffer, settings models.FilterSettings) *models.PixelBuffer {
	t.Helper()
	out, err := pipeline.New().Apply(context.Background(), base, settings)
	require.NoError(t, err)
	return out
}

func TestNewRendersIdentityPreview(t *testing.T) {
	base := baseBuffer(t)
	e, err := New(context.Background(), base, pipeline.New())
	require.NoError(t, err)

	assert.True(t, e.Preview().Equal(base))
	assert.True(t, e.Settings().IsIdentity())
	baseHist := e.BaseHistogram()
	assert.Equal(t, base.PixelCount(), baseHist.Total(models.ChannelR))
	assert.Equal(t, e.BaseHistogram(), e.PreviewHistogram())

	base.Pix[0] = 255
	assert.NotEqual(t, byte(255), e.Base().Pix[0], "the editor keeps its own copy")
}

func TestNewRejectsInvalidBase(t *testing.T) {
	_, err := New(context.Background(), &models.PixelBuffer{Width: 1, Height: 1}, pipeline.New())
	assert.ErrorIs(t, err, models.ErrInvalidBuffer)
}

func TestPreviewIsDerivedFromBase(t *testing.T) {
	base := baseBuffer(t)
	e, err := New(context.Background(), base, pipeline.New())
	require.NoError(t, err)

	_, err = e.SetFilter(context.Background(), models.FilterBrightness, 120)
	require.NoError(t, err)
	got, err := e.SetFilter(context.Background(), models.FilterBrightness, 150)
	require.NoError(t, err)

	want := models.DefaultFilterSettings()
	want.Brightness = 150
	assert.True(t, got.Equal(render(t, base, want)))
	assert.True(t, e.Preview().Equal(got))
	assert.True(t, e.Base().Equal(base))
}

func TestInvalidSettingsKeepState(t *testing.T) {
	e, err := New(context.Background(), baseBuffer(t), pipeline.New())
	require.NoError(t, err)

	_, err = e.SetFilter(context.Background(), models.FilterSepia, 30)
	require.NoError(t, err)
	before := e.Preview()

	_, err = e.SetFilter(context.Background(), models.FilterSepia, 300)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	assert.Equal(t, 30.0, e.Settings().Sepia)
	assert.True(t, e.Preview().Equal(before))
}

type flakyRenderer struct {
	fail bool
}

func (f *flakyRenderer) Apply(ctx context.Context, buf *models.PixelBuffer, settings models.FilterSettings) (*models.PixelBuffer, error) {
	if f.fail {
		return nil, errors.New("render failed")
	}
	return pipeline.New().Apply(ctx, buf, settings)
}

func TestRenderErrorKeepsState(t *testing.T) {
	r := &flakyRenderer{}
	e, err := New(context.Background(), baseBuffer(t), r)
	require.NoError(t, err)

	r.fail = true
	_, err = e.SetFilter(context.Background(), models.FilterInvert, 100)
	assert.EqualError(t, err, "render failed")
	assert.True(t, e.Settings().IsIdentity())
}

func TestPresetResetAndCommit(t *testing.T) {
	base := baseBuffer(t)
	e, err := New(context.Background(), base, pipeline.New())
	require.NoError(t, err)

	vintage, ok := models.FindPreset(models.DefaultPresets(), "Vintage")
	require.True(t, ok)
	preview, err := e.ApplyPreset(context.Background(), vintage)
	require.NoError(t, err)
	assert.Equal(t, vintage.Filters, e.Settings())
	assert.True(t, preview.Equal(render(t, base, vintage.Filters)))

	_, err = e.Reset(context.Background())
	require.NoError(t, err)
	assert.True(t, e.Preview().Equal(base))

	_, err = e.ApplyPreset(context.Background(), vintage)
	require.NoError(t, err)
	committed := e.Commit()

	assert.True(t, committed.Equal(preview))
	assert.True(t, e.Base().Equal(preview))
	assert.True(t, e.Preview().Equal(preview))
	assert.True(t, e.Settings().IsIdentity())
	assert.Equal(t, e.PreviewHistogram(), e.BaseHistogram())

	// Further edits start from the committed image.
	got, err := e.SetFilter(context.Background(), models.FilterInvert, 100)
	require.NoError(t, err)
	inv := models.DefaultFilterSettings()
	inv.Invert = 100
	assert.True(t, got.Equal(render(t, preview, inv)))
}

// gatedRenderer blocks renders with sepia 10 until release is closed.
type gatedRenderer struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRenderer) Apply(ctx context.Context, buf *models.PixelBuffer, settings models.FilterSettings) (*models.PixelBuffer, error) {
	if settings.Sepia == 10 {
		close(g.entered)
		<-g.release
	}
	return pipeline.New().Apply(ctx, buf, settings)
}

func TestOverlappingRendersNewestWins(t *testing.T) {
	r := &gatedRenderer{entered: make(chan struct{}), release: make(chan struct{})}
	e, err := New(context.Background(), baseBuffer(t), r)
	require.NoError(t, err)

	older := make(chan error, 1)
	go func() {
		_, err := e.SetFilter(context.Background(), models.FilterSepia, 10)
		older <- err
	}()
	<-r.entered

	newer, err := e.SetFilter(context.Background(), models.FilterSepia, 20)
	require.NoError(t, err)

	close(r.release)
	assert.ErrorIs(t, <-older, ErrSuperseded)
	assert.Equal(t, 20.0, e.Settings().Sepia)
	assert.True(t, e.Preview().Equal(newer))
}

func TestRenderStartedBeforeCommitIsDiscarded(t *testing.T) {
	r := &gatedRenderer{entered: make(chan struct{}), release: make(chan struct{})}
	e, err := New(context.Background(), baseBuffer(t), r)
	require.NoError(t, err)

	_, err = e.SetFilter(context.Background(), models.FilterInvert, 100)
	require.NoError(t, err)

	stale := make(chan error, 1)
	go func() {
		_, err := e.SetFilter(context.Background(), models.FilterSepia, 10)
		stale <- err
	}()
	<-r.entered

	committed := e.Commit()
	close(r.release)

	assert.ErrorIs(t, <-stale, ErrSuperseded)
	assert.True(t, e.Settings().IsIdentity())
	assert.True(t, e.Preview().Equal(committed))
}
