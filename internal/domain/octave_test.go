package domain

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestGeneratePlot(t *testing.T) {
	ctx := context.Background()
	r := &OctaveRenderer{binary: "octave", timeout: time.Second}

	t.Run("Invalid format", func(t *testing.T) {
		_, err := r.GeneratePlot(ctx, "plot([1,2,3]);", "jpg")
		if err == nil {
			t.Fatal("Expected error for invalid format")
		}
		expected := "unsupported format: jpg (must be png or svg)"
		if err.Error() != expected {
			t.Errorf("Expected error: %s, got: %s", expected, err.Error())
		}
	})

	t.Run("Empty script", func(t *testing.T) {
		_, err := r.ExecuteScript(ctx, "")
		if err == nil {
			t.Fatal("Expected error for empty script")
		}
		expected := "script cannot be empty"
		if err.Error() != expected {
			t.Errorf("Expected error: %s, got: %s", expected, err.Error())
		}
	})
}

func TestNewOctaveRenderer_MissingBinary(t *testing.T) {
	_, err := NewOctaveRenderer(context.Background(), OctaveOptions{Binary: "definitely-not-octave-xyz"})
	if err == nil {
		t.Fatal("Expected error for missing binary")
	}
}

func TestLineScript(t *testing.T) {
	t.Run("Plain line", func(t *testing.T) {
		script, err := lineScript(LineSpec{
			Title:  "ip",
			XLabel: "Time [s]",
			YLabel: "Plasma Current [kA]",
			X:      []float64{0, 0.5},
			Y:      []float64{1, math.NaN()},
		})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		for _, want := range []string{
			"x = [0, 0.5];",
			"y = [1, NaN];",
			"plot(x, y);",
			`xlabel("Time [s]");`,
			`ylabel("Plasma Current [kA]");`,
			`title("ip");`,
		} {
			if !strings.Contains(script, want) {
				t.Errorf("Expected script to contain %q, got:\n%s", want, script)
			}
		}
	})

	t.Run("Error bars", func(t *testing.T) {
		script, err := lineScript(LineSpec{X: []float64{1}, Y: []float64{2}, Errors: []float64{0.1}})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if !strings.Contains(script, "errorbar(x, y, e);") {
			t.Errorf("Expected errorbar call, got:\n%s", script)
		}
	})

	t.Run("Mismatched lengths", func(t *testing.T) {
		_, err := lineScript(LineSpec{X: []float64{1}, Y: []float64{1, 2}})
		if !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("Expected ErrShapeMismatch, got: %v", err)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, err := lineScript(LineSpec{}); err == nil {
			t.Error("Expected error for empty spec")
		}
	})
}

func TestOctaveString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: `"plain"`},
		{in: `say "hi"`, want: `"say \"hi\""`},
		{in: `a\b`, want: `"a\\b"`},
		{in: "two\nlines", want: `"two\nlines"`},
		{in: `"); system("rm -rf /`, want: `"\"); system(\"rm -rf /"`},
	}

	for _, tt := range tests {
		if got := octaveString(tt.in); got != tt.want {
			t.Errorf("octaveString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
