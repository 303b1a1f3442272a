package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsNop(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	l.Log.Info("discarded")
}

func TestInitLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "Info", "WARN", "error"} {
		l := New()
		assert.NoError(t, l.Init(lvl), lvl)
	}
	assert.Error(t, New().Init("loud"))
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kchetan.log")
	l := New()
	require.NoError(t, l.InitFile("info", path))
	l.Log.Info("hello")
	_ = l.Log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
