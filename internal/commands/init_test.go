package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartspend-dev/smartspend/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "smartspend-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "smartspend")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/smartspend")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runSmartspend(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	// Keep a developer's real key out of the tests.
	cmd.Env = append(os.Environ(), "GOOGLE_API_KEY=")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// runSmartspendStdout returns stdout only, for output that must parse.
func runSmartspendStdout(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "GOOGLE_API_KEY=")
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	return string(out), err
}

func initProject(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runSmartspend(t, append([]string{"init", dir}, args...)...)
	require.NoError(t, err, out)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initProject(t)

	expectedDirs := []string{
		filepath.Join("data", "ledgers"),
		filepath.Join("data", "import"),
		filepath.Join("data", "import", "processed"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := initProject(t, "--user", "alice", "--currency", "BDT")

	cfg, err := config.Load(filepath.Join(dir, "smartspend.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.DefaultUser)
	assert.Equal(t, "BDT", cfg.Currency)
	assert.Equal(t, config.BackendFile, cfg.Storage.Backend)
}

func TestInit_Gitignore(t *testing.T) {
	dir := initProject(t)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	contents := string(data)

	for _, pattern := range []string{".env", "data/"} {
		assert.Contains(t, contents, pattern, ".gitignore should contain %s", pattern)
	}

	data, err = os.ReadFile(filepath.Join(dir, ".env.example"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "GOOGLE_API_KEY=")
}

func TestInit_RejectsInvalidUser(t *testing.T) {
	_, err := runSmartspend(t, "init", t.TempDir(), "--user", "../evil")
	require.Error(t, err, "init with an unsafe user should fail")
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	dir := initProject(t)
	out, err := runSmartspend(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestVersion(t *testing.T) {
	out, err := runSmartspend(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none")
}
