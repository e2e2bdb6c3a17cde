package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		log, err := New(Config{})
		require.NoError(t, err)
		require.NotNil(t, log)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := New(Config{Level: "loud"})
		require.ErrorContains(t, err, `invalid log level "loud"`)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		_, err := New(Config{Encoding: "xml"})
		require.EqualError(t, err, `unknown log encoding "xml"`)
	})

	t.Run("json file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "audit.log")
		log, err := New(Config{Level: "debug", Encoding: "json", File: file})
		require.NoError(t, err)
		log.Info("retirement")
		require.NoError(t, log.Sync())

		buf, err := os.ReadFile(file)
		require.NoError(t, err)
		require.Contains(t, string(buf), `"msg":"retirement"`)
	})
}
