//go:build blackbox

package blackbox

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var lotboardBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "lotboard-blackbox-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	lotboardBin = filepath.Join(tmp, "lotboard")

	// Build the binary once for all tests.
	cmd := exec.Command("go", "build", "-o", lotboardBin, "../../cmd/lotboard")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

// run executes the binary in dir with extra environment and fails the test
// on a non-zero exit.
func run(t *testing.T, dir string, env []string, args ...string) string {
	t.Helper()

	cmd := exec.Command(lotboardBin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("command failed: %v\nargs: %v\noutput:\n%s", err, args, string(out))
	}
	return string(out)
}

// runFail is run for commands expected to exit non-zero.
func runFail(t *testing.T, dir string, env []string, args ...string) string {
	t.Helper()

	cmd := exec.Command(lotboardBin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("command succeeded, want failure\nargs: %v\noutput:\n%s", args, string(out))
	}
	return string(out)
}
