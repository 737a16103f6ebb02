package e2e_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// testProject builds the svnchurn binary into an isolated temp directory and
// runs it there.
type testProject struct {
	Dir        string
	BinaryPath string
	t          *testing.T
}

// newTestProject builds the svnchurn binary and returns a testProject ready
// for use. Must be called from a test function.
func newTestProject(t *testing.T) *testProject {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("E2E tests are not supported on Windows")
	}

	dir := t.TempDir()

	binary := filepath.Join(dir, "svnchurn")
	build := exec.Command("go", "build", "-o", binary, "./cmd/svnchurn")
	build.Dir = projectRoot()
	out, err := build.CombinedOutput()
	require.NoError(t, err, "building svnchurn: %s", string(out))

	return &testProject{Dir: dir, BinaryPath: binary, t: t}
}

// projectRoot returns the absolute path to the root of the repository. It
// uses runtime.Caller(0) to find this source file's location and navigates
// two directories up (tests/e2e/ -> tests/ -> repo root).
func projectRoot() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..")
}

// writeConfig writes content to svnchurn.toml in tp.Dir.
func (tp *testProject) writeConfig(content string) {
	tp.t.Helper()
	err := os.WriteFile(filepath.Join(tp.Dir, "svnchurn.toml"), []byte(content), 0o644)
	require.NoError(tp.t, err)
}

// run creates an exec.Cmd for svnchurn with color disabled.
func (tp *testProject) run(args ...string) *exec.Cmd {
	cmd := exec.Command(tp.BinaryPath, args...)
	cmd.Dir = tp.Dir
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	return cmd
}

// runExpectSuccess runs svnchurn and asserts exit code 0. Returns combined
// stdout+stderr output.
func (tp *testProject) runExpectSuccess(args ...string) string {
	tp.t.Helper()
	cmd := tp.run(args...)
	out, err := cmd.CombinedOutput()
	require.NoError(tp.t, err, "svnchurn %v failed:\n%s", args, string(out))
	return string(out)
}

// runExpectFailure runs svnchurn and asserts a non-zero exit code. Returns
// combined output and the exit code.
func (tp *testProject) runExpectFailure(args ...string) (string, int) {
	tp.t.Helper()
	cmd := tp.run(args...)
	out, err := cmd.CombinedOutput()
	require.Error(tp.t, err, "svnchurn %v expected to fail but succeeded:\n%s", args, string(out))
	var exitErr *exec.ExitError
	require.True(tp.t, errors.As(err, &exitErr), "expected *exec.ExitError, got %T: %v", err, err)
	return string(out), exitErr.ExitCode()
}

// minimalConfig returns a minimal svnchurn.toml content pointing at repoURL.
func minimalConfig(repoURL string) string {
	return `[repo]
url = "` + repoURL + `"
`
}
