//go:build blackbox

package blackbox

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestCalcCommand(t *testing.T) {
	out := run(t, t.TempDir(), nil,
		"calc", "--qty", "10", "--entry", "50", "--stop", "45", "--target", "60", "--quote", "52")

	for _, want := range []string{
		"Cost basis:     $500.00",
		"Risk/reward:    2.0",
		"Max loss:       -$50.00",
		"Unrealized:     $20.00 (4.00%)",
	} {
		if !contains(out, want) {
			t.Fatalf("calc output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lotboard.yaml")

	out := run(t, dir, nil, "config", "init", "-o", path)
	if !contains(out, "Created default configuration") {
		t.Fatalf("unexpected init output:\n%s", out)
	}
	out = run(t, dir, nil, "config", "validate", "-f", path)
	if !contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output:\n%s", out)
	}
}

func TestBucketLifecycle(t *testing.T) {
	dir := t.TempDir()
	e := env("LOTBOARD_DB", filepath.Join(dir, "bb.db"))

	run(t, dir, e, "bucket", "create", "Swing")
	run(t, dir, e, "bucket", "create", "Core")

	out := run(t, dir, e, "bucket", "list")
	if !contains(out, "Swing") || !contains(out, "Core") {
		t.Fatalf("bucket list missing names:\n%s", out)
	}

	out = runFail(t, dir, e, "bucket", "create", "Core")
	if !contains(out, "already exists") {
		t.Fatalf("duplicate bucket error missing:\n%s", out)
	}

	run(t, dir, e, "bucket", "delete", "1")
	out = run(t, dir, e, "bucket", "list")
	if contains(out, "Swing") {
		t.Fatalf("deleted bucket still listed:\n%s", out)
	}
}

func TestServe(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest" || r.URL.Query().Get("sym") != "AAPL" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"price": 187.25, "time": "2024-01-02T15:04:05Z"}]`)
	}))
	defer upstream.Close()

	dir := t.TempDir()
	addr := freeAddr(t)
	cmd := exec.Command(lotboardBin, "serve")
	cmd.Dir = dir
	cmd.Env = append(cmd.Environ(), env(
		"LOTBOARD_ADDR", addr,
		"LOTBOARD_DB", filepath.Join(dir, "serve.db"),
		"LOTBOARD_UPSTREAM_URL", upstream.URL,
		"LOTBOARD_LOG_LEVEL", "warn",
	)...)
	var logs strings.Builder
	cmd.Stdout = &logs
	cmd.Stderr = &logs
	if err := cmd.Start(); err != nil {
		t.Fatalf("start serve: %v", err)
	}
	defer func() {
		_ = cmd.Process.Signal(syscall.SIGTERM)
		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			_ = cmd.Process.Kill()
			t.Errorf("serve did not stop on SIGTERM\n%s", logs.String())
		}
	}()

	base := "http://" + addr
	waitHealthy(t, base)

	resp, err := http.Get(base + "/latest?sym=aapl")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("latest status %d: %s", resp.StatusCode, body)
	}
	var q struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if q.Symbol != "AAPL" || q.Price != 187.25 {
		t.Fatalf("quote = %+v", q)
	}

	missing, err := http.Get(base + "/latest?sym=NOPE")
	if err != nil {
		t.Fatalf("latest missing: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing symbol status = %d", missing.StatusCode)
	}
}
