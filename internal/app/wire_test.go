package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/tobyjamez/UDA/internal/config"
	"github.com/tobyjamez/UDA/internal/domain"
)

func TestNewWire(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Backend = "chart"
	cfg.Render.Format = "svg"

	w, err := NewWire(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	defer w.Close()

	if w.Client == nil || w.Cache == nil {
		t.Fatalf("expected client and cache, got %+v", w)
	}
	if w.Publisher != nil {
		t.Errorf("publisher should be off by default")
	}
	if _, ok := w.Renderer.(*domain.ChartRenderer); !ok {
		t.Errorf("expected chart renderer, got %T", w.Renderer)
	}
	if w.Format != domain.FormatSVG {
		t.Errorf("expected svg, got %s", w.Format)
	}
}

func TestNewWire_Publisher(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Backend = "chart"
	cfg.Cache.Enable = false
	cfg.Publish.Enable = true
	cfg.Publish.Brokers = []string{"localhost:9092"}

	w, err := NewWire(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	defer w.Close()
	if w.Publisher == nil || w.Cache != nil {
		t.Errorf("unexpected wiring: %+v", w)
	}
}

func TestNewWire_ResolvesRendererOnFirstPlot(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Enable = false
	cfg.Render.Backend = "auto"
	cfg.Render.Octave = "definitely-not-octave-xyz"

	w, err := NewWire(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	defer w.Close()

	lr, ok := w.Renderer.(*lazyRenderer)
	if !ok {
		t.Fatalf("expected lazy renderer, got %T", w.Renderer)
	}
	if lr.r != nil {
		t.Fatalf("renderer resolved before any plot")
	}

	img, err := w.Renderer.RenderLine(context.Background(), domain.LineSpec{
		X: []float64{0, 1, 2},
		Y: []float64{1, 4, 9},
	}, domain.FormatPNG)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(img, []byte("\x89PNG")) {
		t.Errorf("expected png output")
	}
	if _, ok := lr.r.(*domain.ChartRenderer); !ok {
		t.Errorf("expected chart fallback, got %T", lr.r)
	}
}

func TestNewWire_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Backend = "gnuplot"
	if _, err := NewWire(context.Background(), cfg, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}
