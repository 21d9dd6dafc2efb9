package nativelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayFilename(t *testing.T) {
	day := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "stdout_3-7-26.log", TodayFilename(day))
}

func TestResolveDir(t *testing.T) {
	t.Setenv(EnvLogDir, "/var/log/studyaid")

	assert.Equal(t, "/tmp/explicit", ResolveDir(" /tmp/explicit "))
	assert.Equal(t, "/var/log/studyaid", ResolveDir(""))

	t.Setenv(EnvLogDir, "")
	assert.Equal(t, filepath.Join(".", "logs"), ResolveDir(""))
}

func TestWriterAppendsToDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	w, err := NewWriter(dir)
	require.NoError(t, err)

	fixed := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "stdout_1-2-26.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(content))
}
