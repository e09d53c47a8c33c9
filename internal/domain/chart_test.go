package domain_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/tobyjamez/UDA/internal/domain"
)

func TestChartRenderer(t *testing.T) {
	ctx := context.Background()
	r := domain.NewChartRenderer(domain.ChartOptions{Width: 320, Height: 200})
	spec := domain.LineSpec{
		Title:  "ip",
		XLabel: "Time [s]",
		YLabel: "Plasma Current [kA]",
		X:      []float64{0, 0.1, 0.2, 0.3},
		Y:      []float64{0, 100, 300, 200},
		Errors: []float64{5, 5, 10, 10},
	}

	t.Run("PNG", func(t *testing.T) {
		img, err := r.RenderLine(ctx, spec, domain.FormatPNG)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if !bytes.HasPrefix(img, []byte("\x89PNG")) {
			t.Errorf("Expected PNG signature")
		}
	})

	t.Run("SVG", func(t *testing.T) {
		img, err := r.RenderLine(ctx, spec, domain.FormatSVG)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if !bytes.Contains(img, []byte("<svg")) {
			t.Errorf("Expected svg document")
		}
	})

	t.Run("Invalid format", func(t *testing.T) {
		if _, err := r.RenderLine(ctx, spec, "jpg"); err == nil {
			t.Error("Expected error for invalid format")
		}
	})

	t.Run("Mismatched lengths", func(t *testing.T) {
		bad := spec
		bad.X = bad.X[:1]
		if _, err := r.RenderLine(ctx, bad, domain.FormatPNG); !errors.Is(err, domain.ErrShapeMismatch) {
			t.Errorf("Expected ErrShapeMismatch, got: %v", err)
		}
	})
}

func TestSignalPlotWithChart(t *testing.T) {
	s := newSignal()
	s.SetRenderer(domain.NewChartRenderer(domain.ChartOptions{}))

	fig, err := s.Plot(context.Background(), domain.FormatSVG)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if fig.MIMEType != "image/svg+xml" || len(fig.Data) == 0 {
		t.Errorf("Unexpected figure: %s %d bytes", fig.MIMEType, len(fig.Data))
	}
}

func TestNewRenderer(t *testing.T) {
	ctx := context.Background()

	r, err := domain.NewRenderer(ctx, domain.RendererOptions{Backend: domain.BackendChart})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, ok := r.(*domain.ChartRenderer); !ok {
		t.Errorf("Expected chart renderer, got: %T", r)
	}

	r, err = domain.NewRenderer(ctx, domain.RendererOptions{
		Backend: domain.BackendAuto,
		Octave:  domain.OctaveOptions{Binary: "definitely-not-octave-xyz"},
	})
	if err != nil {
		t.Fatalf("Expected fallback, got: %v", err)
	}
	if _, ok := r.(*domain.ChartRenderer); !ok {
		t.Errorf("Expected chart fallback, got: %T", r)
	}

	if _, err := domain.NewRenderer(ctx, domain.RendererOptions{Backend: "gnuplot"}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestChartRenderer_EdgeSamples(t *testing.T) {
	ctx := context.Background()
	r := domain.NewChartRenderer(domain.ChartOptions{Width: 320, Height: 200})

	tests := []struct {
		name   string
		signal *domain.Signal
	}{
		{"Scalar", &domain.Signal{Label: "te0", Order: -1, Data: []float64{3}}},
		{"Zero scalar", &domain.Signal{Order: -1, Data: []float64{0}}},
		{"NaN gap", &domain.Signal{Shape: []int{3}, Order: -1, Data: []float64{1, math.NaN(), 3}}},
		{"Leading NaN with errors", &domain.Signal{
			Shape:  []int{4},
			Order:  -1,
			Data:   []float64{math.NaN(), 2, 4, math.Inf(1)},
			Errors: []float64{1, math.NaN(), 1, 1},
		}},
		{"Constant", &domain.Signal{Shape: []int{3}, Order: -1, Data: []float64{2, 2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.signal.SetRenderer(r)
			for _, format := range []domain.Format{domain.FormatPNG, domain.FormatSVG} {
				fig, err := tt.signal.Plot(ctx, format)
				if err != nil {
					t.Fatalf("Expected no error for %s, got: %v", format, err)
				}
				if len(fig.Data) == 0 {
					t.Errorf("Expected image bytes for %s", format)
				}
			}
		})
	}

	t.Run("All NaN", func(t *testing.T) {
		spec := domain.LineSpec{X: []float64{0, 1}, Y: []float64{math.NaN(), math.NaN()}}
		if _, err := r.RenderLine(ctx, spec, domain.FormatPNG); err == nil {
			t.Error("Expected error when no sample is finite")
		}
	})
}
