// Package client fetches results from a data server gateway and turns them
// into domain data types.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tobyjamez/UDA/internal/cache"
	"github.com/tobyjamez/UDA/internal/codec"
	"github.com/tobyjamez/UDA/internal/domain"
	"github.com/tobyjamez/UDA/internal/publish"
)

var (
	ErrEmptySignal            = errors.New("signal cannot be empty")
	ErrUnsupportedContentType = errors.New("unsupported content type")
)

// maxBody bounds the size of a single result body.
const maxBody = 256 << 20

// Request names one piece of data.
type Request struct {
	Signal string
	Source string
}

// Options configures a Client. Only BaseURL is required.
type Options struct {
	BaseURL string
	// Codec is the short name of the preferred response encoding (json, cbor, proto).
	Codec       string
	Timeout     time.Duration
	Concurrency int
	CacheTTL    time.Duration

	HTTP      *http.Client
	Renderer  domain.Renderer
	Cache     *cache.Store
	Publisher *publish.Publisher
	Logger    *zap.Logger
}

type Client struct {
	base        string
	accept      string
	timeout     time.Duration
	concurrency int
	cacheTTL    time.Duration

	http      *http.Client
	codecs    *codec.Registry
	cacheEnc  codec.Codec
	renderer  domain.Renderer
	cache     *cache.Store
	publisher *publish.Publisher
	log       *zap.Logger
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("client base URL is required")
	}
	if opts.Codec == "" {
		opts.Codec = "json"
	}
	accept, err := codec.Resolve(opts.Codec)
	if err != nil {
		return nil, err
	}
	codecs, err := codec.NewRegistry()
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.HTTP == nil {
		opts.HTTP = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		base:        strings.TrimRight(opts.BaseURL, "/"),
		accept:      accept,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		cacheTTL:    opts.CacheTTL,
		http:        opts.HTTP,
		codecs:      codecs,
		cacheEnc:    codecs.Get("cbor"),
		renderer:    opts.Renderer,
		cache:       opts.Cache,
		publisher:   opts.Publisher,
		log:         opts.Logger,
	}, nil
}

// Get fetches signal from source and returns it as domain data.
func (c *Client) Get(ctx context.Context, signal, source string) (domain.Data, error) {
	res, err := c.Fetch(ctx, signal, source)
	if err != nil {
		return nil, err
	}
	return res.ToData(c.renderer)
}

// GetBatch fetches all requests concurrently. Results keep the request order;
// the first failure cancels the remaining fetches.
func (c *Client) GetBatch(ctx context.Context, reqs []Request) ([]domain.Data, error) {
	out := make([]domain.Data, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, r := range reqs {
		g.Go(func() error {
			d, err := c.Get(ctx, r.Signal, r.Source)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Signal, err)
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch returns the wire result for signal, consulting the cache first.
// Results carrying a server error are returned as that error and not cached.
func (c *Client) Fetch(ctx context.Context, signal, source string) (*Result, error) {
	if strings.TrimSpace(signal) == "" {
		return nil, ErrEmptySignal
	}

	key := signal + "\x00" + source
	if res, ok := c.cached(key); ok {
		c.log.Debug("cache hit", zap.String("signal", signal), zap.String("source", source))
		return res, nil
	}

	res, err := c.fetch(ctx, signal, source)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	c.store(key, res)
	c.announce(ctx, res)
	return res, nil
}

func (c *Client) fetch(ctx context.Context, signal, source string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("signal", signal)
	q.Set("source", source)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/data?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", c.accept)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", signal, err)
	}
	defer resp.Body.Close()

	c.log.Debug("fetched",
		zap.String("signal", signal),
		zap.String("source", source),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", signal, resp.Status)
	}

	ct := resp.Header.Get("Content-Type")
	dec := c.codecs.Get(ct)
	if dec == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, ct)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", signal, err)
	}

	var res Result
	if err := dec.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", signal, err)
	}
	if res.Signal == "" {
		res.Signal = signal
	}
	if res.Source == "" {
		res.Source = source
	}
	return &res, nil
}

func (c *Client) cached(key string) (*Result, bool) {
	if c.cache == nil {
		return nil, false
	}
	b, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	var res Result
	if err := c.cacheEnc.Unmarshal(b, &res); err != nil {
		c.log.Warn("dropping undecodable cache entry", zap.Error(err))
		c.cache.Delete(key)
		return nil, false
	}
	return &res, true
}

func (c *Client) store(key string, res *Result) {
	if c.cache == nil {
		return
	}
	b, err := c.cacheEnc.Marshal(res)
	if err != nil {
		c.log.Warn("result not cached", zap.String("signal", res.Signal), zap.Error(err))
		return
	}
	c.cache.Set(key, b, c.cacheTTL)
}

// announce publishes a fetch event; failures are logged by the publisher only.
func (c *Client) announce(ctx context.Context, res *Result) {
	if c.publisher == nil {
		return
	}
	_ = c.publisher.Publish(ctx, publish.Event{
		Signal: res.Signal,
		Source: res.Source,
		Kind:   res.Kind,
		Label:  res.Label,
	})
}
