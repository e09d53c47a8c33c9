package domain

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// LineSpec describes a single line plot.
type LineSpec struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
	// Errors holds optional symmetric error bars, one per Y value.
	Errors []float64
}

// Renderer defines the interface for plot backends
type Renderer interface {
	RenderLine(ctx context.Context, spec LineSpec, format Format) ([]byte, error)
}

// Backend names accepted by NewRenderer.
const (
	BackendAuto   = "auto"
	BackendOctave = "octave"
	BackendChart  = "chart"
)

// RendererOptions configures NewRenderer.
type RendererOptions struct {
	Backend string
	Octave  OctaveOptions
	Chart   ChartOptions
	Logger  *zap.Logger
}

// NewRenderer builds the configured backend. With BackendAuto it prefers GNU
// Octave and falls back to the built-in chart renderer when Octave is missing.
func NewRenderer(ctx context.Context, opts RendererOptions) (Renderer, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	switch opts.Backend {
	case BackendOctave:
		return NewOctaveRenderer(ctx, opts.Octave)
	case BackendChart:
		return NewChartRenderer(opts.Chart), nil
	case BackendAuto, "":
		r, err := NewOctaveRenderer(ctx, opts.Octave)
		if err == nil {
			log.Debug("using octave renderer", zap.String("version", r.Version()))
			return r, nil
		}
		log.Warn("octave unavailable, falling back to chart renderer", zap.Error(err))
		return NewChartRenderer(opts.Chart), nil
	default:
		return nil, fmt.Errorf("unknown render backend: %q", opts.Backend)
	}
}
