package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tobyjamez/UDA/internal/cache"
	"github.com/tobyjamez/UDA/internal/client"
	"github.com/tobyjamez/UDA/internal/config"
	"github.com/tobyjamez/UDA/internal/domain"
	"github.com/tobyjamez/UDA/internal/publish"
)

// Wire bundles the client and its collaborators.
type Wire struct {
	Client    *client.Client
	Renderer  domain.Renderer
	Format    domain.Format
	Cache     *cache.Store
	Publisher *publish.Publisher
	Log       *zap.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Wire, error) {
	if log == nil {
		log = zap.NewNop()
	}

	format, err := domain.ParseFormat(cfg.Render.Format)
	if err != nil {
		return nil, err
	}
	renderer, err := newRenderer(domain.RendererOptions{
		Backend: cfg.Render.Backend,
		Octave:  domain.OctaveOptions{Binary: cfg.Render.Octave, Timeout: cfg.Render.Timeout},
		Chart:   domain.ChartOptions{Width: cfg.Render.Width, Height: cfg.Render.Height},
		Logger:  log.Named("render"),
	})
	if err != nil {
		return nil, err
	}

	w := &Wire{Renderer: renderer, Format: format, Log: log}

	if cfg.Cache.Enable {
		w.Cache = cache.New(cache.Options{Shards: cfg.Cache.Shards})
	}
	if cfg.Publish.Enable {
		w.Publisher, err = publish.NewKafka(publish.Params{
			Brokers: cfg.Publish.Brokers,
			Topic:   cfg.Publish.Topic,
		}, log.Named("publish"))
		if err != nil {
			w.Close()
			return nil, err
		}
	}

	w.Client, err = client.New(client.Options{
		BaseURL:     cfg.Client.BaseURL,
		Codec:       cfg.Client.Codec,
		Timeout:     cfg.Client.Timeout,
		Concurrency: cfg.Client.Concurrency,
		CacheTTL:    cfg.Cache.TTL,
		Renderer:    renderer,
		Cache:       w.Cache,
		Publisher:   w.Publisher,
		Logger:      log.Named("client"),
	})
	if err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the cache sweeper and the Kafka writer.
func (w *Wire) Close() error {
	var errs []error
	if w.Cache != nil {
		w.Cache.Close()
	}
	if w.Publisher != nil {
		errs = append(errs, w.Publisher.Close())
	}
	return errors.Join(errs...)
}

// newRenderer builds the chart backend directly. Backends that probe for
// Octave are resolved on the first plot, so commands that never plot do not
// pay for the probe.
func newRenderer(opts domain.RendererOptions) (domain.Renderer, error) {
	switch opts.Backend {
	case domain.BackendChart:
		return domain.NewChartRenderer(opts.Chart), nil
	case domain.BackendOctave, domain.BackendAuto, "":
		return &lazyRenderer{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown render backend: %q", opts.Backend)
	}
}

type lazyRenderer struct {
	opts domain.RendererOptions
	once sync.Once
	r    domain.Renderer
	err  error
}

func (l *lazyRenderer) RenderLine(ctx context.Context, spec domain.LineSpec, format domain.Format) ([]byte, error) {
	l.once.Do(func() {
		l.r, l.err = domain.NewRenderer(ctx, l.opts)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.r.RenderLine(ctx, spec, format)
}
