package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
log:
  level: warn
history:
  enabled: true
  path: history.db
metrics:
  enabled: false
`

// execute runs the command tree in a fresh temp dir holding the test
// config and returns stdout.
func execute(t *testing.T, sourceURL string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfig), 0o644))
	return executeIn(t, sourceURL, append([]string{"-c", "config.yaml"}, args...)...)
}

func executeIn(t *testing.T, sourceURL string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&app{sourceURL: sourceURL})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand_WritesCSVAndHistory(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"userId":1,"id":1,"title":"t1","body":"b1"},{"userId":2,"id":2,"title":"t2","body":"b2"}]`))
	}))
	defer upstream.Close()

	out, err := execute(t, upstream.URL, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "extracted 2, written 2")

	data, err := os.ReadFile("jsonplaceholder_data.csv")
	require.NoError(t, err)
	assert.Equal(t, "userId,title,body\n1,t1,b1\n2,t2,b2\n", string(data))

	out, err = executeIn(t, upstream.URL, "-c", "config.yaml", "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "RUN ID")
	assert.Contains(t, lines[1], "success")

	runID := strings.Fields(lines[1])[0]
	out, err = executeIn(t, upstream.URL, "-c", "config.yaml", "history", "--run", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "extract")
	assert.Contains(t, out, "transform")
	assert.Contains(t, out, "load")
}

func TestRunCommand_NullPayloadLeavesNoFile(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer upstream.Close()

	_, err := execute(t, upstream.URL, "run")
	require.NoError(t, err)

	_, err = os.Stat("jsonplaceholder_data.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHistoryCommand_UnknownRun(t *testing.T) {
	_, err := execute(t, "", "history", "--run", "nope")
	assert.Error(t, err)
}

func TestDAGCommand(t *testing.T) {
	out, err := execute(t, "", "dag")
	require.NoError(t, err)
	assert.Contains(t, out, "etl_jsonplaceholder_pipeline")
	assert.Contains(t, out, "extract >> transform >> load")
	assert.Contains(t, out, "@daily (UTC)")
	assert.Contains(t, out, "retry delay: 5m0s")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	_, err := execute(t, "", "--log-level", "loud", "dag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := executeIn(t, "", "-c", "missing.yaml", "dag")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
