package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv rewrites golden files instead of comparing when set.
const UpdateGoldenEnv = "TASKDASH_UPDATE_GOLDEN"

// Golden compares rendered CLI output with testdata/<name>.golden in the
// calling package. Line endings in the golden file are normalized to \n so
// checkouts with autocrlf still match.
func Golden(t *testing.T, name, got string) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	if os.Getenv(UpdateGoldenEnv) != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(got), 0644))
		return
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err, "missing golden file (set %s=1 to create it); got:\n%s", UpdateGoldenEnv, got)
	want := strings.ReplaceAll(string(data), "\r\n", "\n")
	assert.Equal(t, want, got, "output mismatch for %s", name)
}
