package config_test

import (
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/louisbranch/livedraft/internal/platform/config"
)

// TestExitf_ExitsWithCode1 runs Exitf in a subprocess because os.Exit cannot
// be intercepted in-process.
func TestExitf_ExitsWithCode1(t *testing.T) {
	if os.Getenv("TEST_EXITF_SUBPROCESS") == "1" {
		config.Exitf("room id is required (%s)", "LIVEDRAFT_ROOM_ID")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitf_ExitsWithCode1$")
	cmd.Env = append(os.Environ(), "TEST_EXITF_SUBPROCESS=1")

	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.ExitCode())
	}
	want := "room id is required (LIVEDRAFT_ROOM_ID)"
	if !strings.Contains(string(out), want) {
		t.Fatalf("expected stderr to contain %q, got %q", want, string(out))
	}
}
