package domain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// OctaveOptions configures the GNU Octave backend.
type OctaveOptions struct {
	// Binary defaults to "octave" looked up in PATH.
	Binary  string
	Timeout time.Duration
}

// OctaveRenderer plots by running GNU Octave non-interactively.
type OctaveRenderer struct {
	binary  string
	timeout time.Duration
	version string
}

var _ Renderer = (*OctaveRenderer)(nil)

// NewOctaveRenderer checks that Octave can be run and returns a renderer for it.
func NewOctaveRenderer(ctx context.Context, opts OctaveOptions) (*OctaveRenderer, error) {
	if opts.Binary == "" {
		opts.Binary = "octave"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, opts.Binary, "--version").Output()
	if err != nil {
		return nil, fmt.Errorf("could not run %s command, make sure it's installed and available in the PATH: %w", opts.Binary, err)
	}

	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return &OctaveRenderer{binary: opts.Binary, timeout: opts.Timeout, version: version}, nil
}

// Version is the first line of `octave --version`.
func (r *OctaveRenderer) Version() string { return r.version }

func (r *OctaveRenderer) ExecuteScript(ctx context.Context, script string) (string, error) {
	if script == "" {
		return "", fmt.Errorf("script cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary, "--no-gui", "--eval", script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := strings.TrimSpace(stdout.String())

	if err != nil {
		result = stderr.String() + "\n" + result
		return result, err
	}

	return result, nil
}

func (r *OctaveRenderer) GeneratePlot(ctx context.Context, script string, format Format) ([]byte, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "uda-plot-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	plotFile := filepath.Join(tempDir, "plot."+string(format))
	wrappedScript := fmt.Sprintf(`
graphics_toolkit("qt");
set(0, "defaultfigurevisible", "off");
%s
print(%s);
`, script, octaveString(plotFile))

	if out, err := r.ExecuteScript(ctx, wrappedScript); err != nil {
		return nil, fmt.Errorf("plot generation failed: %w: %s", err, out)
	}

	imgData, err := os.ReadFile(plotFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read plot file: %w", err)
	}

	return imgData, nil
}

func (r *OctaveRenderer) RenderLine(ctx context.Context, spec LineSpec, format Format) ([]byte, error) {
	script, err := lineScript(spec)
	if err != nil {
		return nil, err
	}
	return r.GeneratePlot(ctx, script, format)
}

// lineScript builds the Octave commands drawing spec.
func lineScript(spec LineSpec) (string, error) {
	if len(spec.Y) == 0 {
		return "", fmt.Errorf("nothing to plot")
	}
	if len(spec.X) != len(spec.Y) {
		return "", fmt.Errorf("%w: %d x values for %d y values", ErrShapeMismatch, len(spec.X), len(spec.Y))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "x = %s;\n", octaveVector(spec.X))
	fmt.Fprintf(&b, "y = %s;\n", octaveVector(spec.Y))
	if len(spec.Errors) == len(spec.Y) {
		fmt.Fprintf(&b, "e = %s;\n", octaveVector(spec.Errors))
		b.WriteString("errorbar(x, y, e);\n")
	} else {
		b.WriteString("plot(x, y);\n")
	}
	if spec.XLabel != "" {
		fmt.Fprintf(&b, "xlabel(%s);\n", octaveString(spec.XLabel))
	}
	if spec.YLabel != "" {
		fmt.Fprintf(&b, "ylabel(%s);\n", octaveString(spec.YLabel))
	}
	if spec.Title != "" {
		fmt.Fprintf(&b, "title(%s);\n", octaveString(spec.Title))
	}
	return b.String(), nil
}

func octaveVector(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// octaveString quotes s as an Octave double-quoted string literal.
func octaveString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}
