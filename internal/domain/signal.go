package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	ErrNoRenderer      = errors.New("no plot renderer configured")
	ErrUnsupportedRank = errors.New("unsupported rank for plotting")
	ErrShapeMismatch   = errors.New("dimension length does not match data")
)

// Dim is a coordinate axis of a signal.
type Dim struct {
	Index int
	Label string
	Units string
	Data  []float64
}

// Signal is numeric data with optional errors and coordinate dimensions.
type Signal struct {
	Label       string
	Units       string
	Description string
	Shape       []int
	// Order is the index of the time dimension, or -1 when there is none.
	Order  int
	Data   []float64
	Errors []float64
	Dims   []Dim
	Meta   map[string]string

	renderer Renderer
}

var _ Data = (*Signal)(nil)

// SetRenderer sets the backend used by Plot.
func (s *Signal) SetRenderer(r Renderer) { s.renderer = r }

func (s *Signal) Rank() int { return len(s.Shape) }

func (s *Signal) HasTime() bool { return s.Order >= 0 && s.Order < len(s.Dims) }

// TimeDim returns the time dimension, if the signal has one.
func (s *Signal) TimeDim() (Dim, bool) {
	if !s.HasTime() {
		return Dim{}, false
	}
	return s.Dims[s.Order], true
}

// HasErrors reports whether per-sample errors are present.
func (s *Signal) HasErrors() bool { return len(s.Errors) > 0 }

func (s *Signal) Plot(ctx context.Context, format Format) (*Figure, error) {
	if s.renderer == nil {
		return nil, ErrNoRenderer
	}
	if s.Rank() > 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRank, s.Rank())
	}

	spec, err := s.lineSpec()
	if err != nil {
		return nil, err
	}
	img, err := s.renderer.RenderLine(ctx, spec, format)
	if err != nil {
		return nil, err
	}
	return newFigure(format, img), nil
}

func (s *Signal) lineSpec() (LineSpec, error) {
	spec := LineSpec{
		Title:  s.Description,
		YLabel: axisLabel(s.Label, s.Units),
		Y:      s.Data,
	}

	x, ok := s.TimeDim()
	if !ok && len(s.Dims) > 0 {
		x, ok = s.Dims[0], true
	}
	if ok {
		if len(x.Data) != len(s.Data) {
			return LineSpec{}, fmt.Errorf("%w: dim %q has %d values, data has %d", ErrShapeMismatch, x.Label, len(x.Data), len(s.Data))
		}
		spec.X = x.Data
		spec.XLabel = axisLabel(x.Label, x.Units)
	} else {
		spec.X = make([]float64, len(s.Data))
		for i := range spec.X {
			spec.X[i] = float64(i)
		}
	}

	if len(s.Errors) == len(s.Data) {
		spec.Errors = s.Errors
	}
	return spec, nil
}

func (s *Signal) Widget(ctx context.Context) (*Widget, error) {
	w := &Widget{Kind: WidgetPanel, Title: s.Label}
	w.add("label", s.Label)
	w.add("units", s.Units)
	w.add("description", s.Description)
	w.add("rank", s.Rank())
	w.add("shape", s.Shape)
	w.add("size", len(s.Data))
	if len(s.Data) > 0 {
		lo, hi, mean := stats(s.Data)
		w.add("min", lo)
		w.add("max", hi)
		w.add("mean", mean)
	}
	if s.HasErrors() {
		w.add("errors", len(s.Errors))
	}

	for i, d := range s.Dims {
		dw := &Widget{Kind: WidgetPanel, Title: fmt.Sprintf("dim %d", d.Index)}
		dw.add("label", d.Label)
		dw.add("units", d.Units)
		dw.add("size", len(d.Data))
		if len(d.Data) > 0 {
			dw.add("start", d.Data[0])
			dw.add("end", d.Data[len(d.Data)-1])
		}
		if s.Order == i {
			dw.add("time", true)
		}
		w.Children = append(w.Children, dw)
	}

	if len(s.Meta) > 0 {
		mw := &Widget{Kind: WidgetPanel, Title: "meta"}
		keys := make([]string, 0, len(s.Meta))
		for k := range s.Meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			mw.add(k, s.Meta[k])
		}
		w.Children = append(w.Children, mw)
	}
	return w, nil
}

func (s *Signal) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", axisLabel(s.Label, s.Units))
	fmt.Fprintf(&b, " shape=%v", s.Shape)
	if len(s.Data) > 0 {
		lo, hi, mean := stats(s.Data)
		fmt.Fprintf(&b, " min=%g max=%g mean=%g", lo, hi, mean)
	}
	if s.Description != "" {
		fmt.Fprintf(&b, " (%s)", s.Description)
	}
	return b.String()
}

func axisLabel(label, units string) string {
	if units == "" {
		return label
	}
	return fmt.Sprintf("%s [%s]", label, units)
}

// stats ignores NaN samples; all-NaN data yields NaN for every value.
func stats(v []float64) (lo, hi, mean float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	var sum float64
	var n int
	for _, f := range v {
		if math.IsNaN(f) {
			continue
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
		sum += f
		n++
	}
	if n == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	return lo, hi, sum / float64(n)
}
