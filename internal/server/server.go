package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/tobyjamez/UDA/internal/codec"
	"github.com/tobyjamez/UDA/internal/domain"
)

// DataSource resolves a signal request to data.
type DataSource interface {
	Get(ctx context.Context, signal, source string) (domain.Data, error)
}

type DataParams struct {
	Signal string `json:"signal" jsonschema:"The signal to read, e.g. ip or a plugin call such as OPENDATA::help()"`
	Source string `json:"source,omitempty" jsonschema:"The data source, usually a shot or experiment number"`
}

type PlotParams struct {
	Signal string `json:"signal" jsonschema:"The signal to plot"`
	Source string `json:"source,omitempty" jsonschema:"The data source, usually a shot or experiment number"`
	Format string `json:"format,omitempty" jsonschema:"Image output format. Supported: svg or png"`
}

type Server struct {
	mcpServer *mcp.Server
	data      DataSource
	format    domain.Format
	log       *zap.Logger
}

func New(data DataSource, format domain.Format, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if format == "" {
		format = domain.FormatPNG
	}
	return &Server{
		data:   data,
		format: format,
		log:    log,
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    "uda-mcp",
			Version: "1.0.0",
		}, nil),
	}
}

func (s *Server) RegisterHandlers() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_data",
		Description: "Reads a signal from the data server and returns a short text summary (label, units, shape, range).",
	}, s.getDataHandler)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "plot_data",
		Description: "Reads a signal and returns it plotted against its time dimension as an image (png/svg). Text and structured results cannot be plotted.",
	}, s.plotDataHandler)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "data_widget",
		Description: "Reads a signal and returns a JSON widget tree describing it: fields, dimensions, metadata or structure nodes.",
	}, s.widgetHandler)
}

func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	if !strings.Contains(addr, "localhost") && !strings.Contains(addr, "127.0.0.1") {
		return fmt.Errorf("HTTP server must bind to localhost for security")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("Starting HTTP server", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler serves the MCP endpoint at /mcp.
func (s *Server) Handler() http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{})

	mux := http.NewServeMux()
	mux.Handle("/mcp", s.loggingMiddleware(securityMiddleware(handler)))
	return mux
}

func (s *Server) RunStdio(ctx context.Context) error {
	s.log.Info("Starting stdio server")
	transport := &mcp.LoggingTransport{Transport: &mcp.StdioTransport{}, Writer: os.Stderr}
	return s.mcpServer.Run(ctx, transport)
}

func (s *Server) getDataHandler(ctx context.Context, req *mcp.CallToolRequest, args DataParams) (*mcp.CallToolResult, any, error) {
	d, err := s.fetch(ctx, args.Signal, args.Source)
	if err != nil {
		return errorResult(err), nil, nil
	}

	text := fmt.Sprintf("%T", d)
	if str, ok := d.(fmt.Stringer); ok {
		text = str.String()
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

func (s *Server) plotDataHandler(ctx context.Context, req *mcp.CallToolRequest, args PlotParams) (*mcp.CallToolResult, any, error) {
	format := s.format
	if args.Format != "" {
		f, err := domain.ParseFormat(args.Format)
		if err != nil {
			return errorResult(err), nil, nil
		}
		format = f
	}

	d, err := s.fetch(ctx, args.Signal, args.Source)
	if err != nil {
		return errorResult(err), nil, nil
	}

	fig, err := d.Plot(ctx, format)
	if err != nil {
		s.log.Warn("plot failed", zap.String("signal", args.Signal), zap.Error(err))
		return errorResult(err), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.ImageContent{Data: fig.Data, MIMEType: fig.MIMEType}},
	}, nil, nil
}

func (s *Server) widgetHandler(ctx context.Context, req *mcp.CallToolRequest, args DataParams) (*mcp.CallToolResult, any, error) {
	d, err := s.fetch(ctx, args.Signal, args.Source)
	if err != nil {
		return errorResult(err), nil, nil
	}

	w, err := d.Widget(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}
	b, err := codec.JSON().Marshal(w)
	if err != nil {
		return nil, nil, fmt.Errorf("encode widget: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func (s *Server) fetch(ctx context.Context, signal, source string) (domain.Data, error) {
	if strings.TrimSpace(signal) == "" {
		return nil, fmt.Errorf("signal parameter is required")
	}
	d, err := s.data.Get(ctx, signal, source)
	if err != nil {
		s.log.Warn("fetch failed", zap.String("signal", signal), zap.String("source", source), zap.Error(err))
		return nil, err
	}
	return d, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.status = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Flush keeps streaming responses working through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		s.log.Debug("request started",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID))

		rw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)

		status := rw.status
		if status == 0 {
			status = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", requestID),
		}

		switch {
		case status >= 500:
			s.log.Error("internal error", fields...)
		case status >= 400:
			s.log.Warn("invalid request", fields...)
		default:
			s.log.Info("request completed", fields...)
		}
	})
}

func securityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && !strings.HasPrefix(origin, "http://localhost") {
			http.Error(w, "Invalid origin", http.StatusForbidden)
			return
		}

		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(w, r)
	})
}
