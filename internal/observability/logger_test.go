package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/tobyjamez/UDA/internal/config"
)

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "uda.log")
	logger, err := SetupLogger(config.LogConfig{
		Level:   "warning",
		Format:  "json",
		Outputs: []string{path},
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer zap.ReplaceGlobals(zap.NewNop())

	logger.Info("hidden")
	logger.Warn("shown", zap.String("signal", "ip"))
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"signal":"ip"`) {
		t.Errorf("expected json field in log: %s", out)
	}
}

func TestNormalizeLevel(t *testing.T) {
	for in, want := range map[string]string{"WARNING": "warn", " Debug ": "debug", "error": "error"} {
		if got := normalizeLevel(in); got != want {
			t.Errorf("normalizeLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
