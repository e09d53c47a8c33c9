package domain

import (
	"bytes"
	"context"
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ChartOptions sets the image size of the chart backend in pixels.
type ChartOptions struct {
	Width  int
	Height int
}

// ChartRenderer draws plots in-process with go-chart.
type ChartRenderer struct {
	width  int
	height int
}

var _ Renderer = (*ChartRenderer)(nil)

func NewChartRenderer(opts ChartOptions) *ChartRenderer {
	if opts.Width <= 0 {
		opts.Width = 1024
	}
	if opts.Height <= 0 {
		opts.Height = 400
	}
	return &ChartRenderer{width: opts.Width, height: opts.Height}
}

func (r *ChartRenderer) RenderLine(ctx context.Context, spec LineSpec, format Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(spec.Y) == 0 {
		return nil, fmt.Errorf("nothing to plot")
	}
	if len(spec.X) != len(spec.Y) {
		return nil, fmt.Errorf("%w: %d x values for %d y values", ErrShapeMismatch, len(spec.X), len(spec.Y))
	}

	var provider chart.RendererProvider
	switch format {
	case FormatPNG:
		provider = chart.PNG
	case FormatSVG:
		provider = chart.SVG
	default:
		return nil, fmt.Errorf("unsupported format: %s (must be png or svg)", format)
	}

	var xb, yb bounds
	line := chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2}
	series := finiteSegments(spec.X, spec.Y, line, &xb, &yb)
	if len(series) == 0 {
		return nil, fmt.Errorf("nothing to plot: no finite samples")
	}
	// go-chart has no error bars; draw the envelope as two thin series.
	if len(spec.Errors) == len(spec.Y) {
		lo := make([]float64, len(spec.Y))
		hi := make([]float64, len(spec.Y))
		for i, y := range spec.Y {
			lo[i] = y - spec.Errors[i]
			hi[i] = y + spec.Errors[i]
		}
		envelope := chart.Style{StrokeColor: chart.ColorLightGray, StrokeWidth: 1}
		series = append(series, finiteSegments(spec.X, lo, envelope, &xb, &yb)...)
		series = append(series, finiteSegments(spec.X, hi, envelope, &xb, &yb)...)
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		XAxis:  chart.XAxis{Name: spec.XLabel, Range: xb.axis()},
		YAxis:  chart.YAxis{Name: spec.YLabel, Range: yb.axis()},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("plot generation failed: %w", err)
	}
	return buf.Bytes(), nil
}

// finiteSegments splits a line at samples where x or y is NaN or infinite,
// so gaps in the data stay gaps in the plot. Kept samples widen xb and yb.
func finiteSegments(x, y []float64, style chart.Style, xb, yb *bounds) []chart.Series {
	var out []chart.Series
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		st := style
		if end-start == 1 {
			st.DotWidth = 3
			st.DotColor = style.StrokeColor
		}
		out = append(out, chart.ContinuousSeries{XValues: x[start:end], YValues: y[start:end], Style: st})
		start = -1
	}
	for i := range y {
		if !finite(x[i]) || !finite(y[i]) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
		xb.include(x[i])
		yb.include(y[i])
	}
	flush(len(y))
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

type bounds struct {
	set      bool
	min, max float64
}

func (b *bounds) include(v float64) {
	if !b.set {
		b.min, b.max, b.set = v, v, true
		return
	}
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

// axis returns an explicit range; a single value is padded so the axis
// never collapses to zero width.
func (b bounds) axis() *chart.ContinuousRange {
	lo, hi := b.min, b.max
	if lo == hi {
		pad := math.Abs(lo) * 0.1
		if pad == 0 {
			pad = 0.5
		}
		lo, hi = lo-pad, hi+pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}
