package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const ipJSON = `{"signal":"ip","kind":"signal","label":"Plasma Current","units":"kA",
"shape":[3],"order":0,"data":[1,2,3],"dims":[{"label":"Time","units":"s","data":[0,0.1,0.2]}]}`

const helpJSON = `{"signal":"help","kind":"string","value":"openData help"}`

func newTestEnv(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("signal") {
		case "ip":
			_, _ = w.Write([]byte(ipJSON))
		case "help":
			_, _ = w.Write([]byte(helpJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "uda.yaml")
	body := "log:\n  level: error\n  outputs: [stderr]\nrender:\n  backend: chart\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("UDA_CONFIG", cfgPath)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, source = "", ""
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGetCommand(t *testing.T) {
	url := newTestEnv(t)

	out, err := run(t, "--server", url, "get", "ip", "help", "-s", "12345")
	if err != nil {
		t.Fatalf("get: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ip: Plasma Current [kA] shape=[3]") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "help: openData help") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPlotCommand(t *testing.T) {
	url := newTestEnv(t)
	target := filepath.Join(t.TempDir(), "ip.svg")

	out, err := run(t, "--server", url, "plot", "ip", "-f", "svg", "-o", target)
	if err != nil {
		t.Fatalf("plot: %v\n%s", err, out)
	}
	b, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read plot: %v", err)
	}
	if !bytes.Contains(b, []byte("<svg")) {
		t.Errorf("expected svg output")
	}

	if _, err := run(t, "--server", url, "plot", "help", "-o", target); err == nil {
		t.Error("expected error plotting a string result")
	}
}

func TestWidgetCommand(t *testing.T) {
	url := newTestEnv(t)

	out, err := run(t, "--server", url, "widget", "ip")
	if err != nil {
		t.Fatalf("widget: %v\n%s", err, out)
	}
	if !strings.Contains(out, "  units: kA") {
		t.Errorf("unexpected text widget:\n%s", out)
	}

	out, err = run(t, "--server", url, "widget", "help", "--json")
	if err != nil {
		t.Fatalf("widget json: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"kind":"text"`) {
		t.Errorf("unexpected json widget:\n%s", out)
	}
}
