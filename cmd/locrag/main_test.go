package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/locrag"
	main "github.com/fwojciec/locrag/cmd/locrag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMain returns a Main reading only the given environment. An empty config
// file keeps the user's own configuration out of the test.
func newMain(t *testing.T, env map[string]string) *main.Main {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "locrag.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}\n"), 0644))
	if _, ok := env["LOCRAG_CONFIG"]; !ok {
		env["LOCRAG_CONFIG"] = cfgPath
	}

	m := main.NewMain()
	m.Getenv = func(k string) string { return env[k] }
	return m
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints help", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		m := newMain(t, map[string]string{})

		err := m.Run(context.Background(), []string{"--help"}, strings.NewReader(""), stdout, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "locrag")
		assert.Contains(t, stdout.String(), "upload")
		assert.Contains(t, stdout.String(), "posts")
	})

	t.Run("requires an API key", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		m := newMain(t, map[string]string{})

		err := m.Run(context.Background(), []string{"status"}, strings.NewReader(""), &bytes.Buffer{}, stderr)
		require.Error(t, err)
		assert.Equal(t, locrag.ECONFIG, locrag.ErrorCode(err))
		assert.Contains(t, stderr.String(), "GEMINI_API_KEY is not set")
		assert.Contains(t, stderr.String(), "https://aistudio.google.com/apikey")
	})

	t.Run("reports saved store", func(t *testing.T) {
		t.Parallel()

		storeFile := filepath.Join(t.TempDir(), "store_name.txt")
		require.NoError(t, os.WriteFile(storeFile, []byte("fileSearchStores/abc\n"), 0644))

		stdout := &bytes.Buffer{}
		m := newMain(t, map[string]string{
			"GEMINI_API_KEY":    "test-key",
			"LOCRAG_STORE_FILE": storeFile,
		})

		err := m.Run(context.Background(), []string{"status"}, strings.NewReader(""), stdout, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "Store: fileSearchStores/abc (store ready)\n", stdout.String())
	})

	t.Run("store name from environment wins", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		m := newMain(t, map[string]string{
			"GEMINI_API_KEY":    "test-key",
			"STORE_NAME":        "fileSearchStores/env",
			"LOCRAG_STORE_FILE": filepath.Join(t.TempDir(), "missing.txt"),
		})

		err := m.Run(context.Background(), []string{"status"}, strings.NewReader(""), stdout, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "fileSearchStores/env")
	})

	t.Run("reset clears the saved store", func(t *testing.T) {
		t.Parallel()

		storeFile := filepath.Join(t.TempDir(), "store_name.txt")
		require.NoError(t, os.WriteFile(storeFile, []byte("fileSearchStores/abc\n"), 0644))

		m := newMain(t, map[string]string{
			"GEMINI_API_KEY":    "test-key",
			"LOCRAG_STORE_FILE": storeFile,
		})

		err := m.Run(context.Background(), []string{"reset"}, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)
		_, statErr := os.Stat(storeFile)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("commands that need a store fail without one", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		m := newMain(t, map[string]string{
			"GEMINI_API_KEY":    "test-key",
			"LOCRAG_STORE_FILE": filepath.Join(t.TempDir(), "store_name.txt"),
		})

		err := m.Run(context.Background(), []string{"docs"}, strings.NewReader(""), &bytes.Buffer{}, stderr)
		assert.Equal(t, locrag.ENOSTORE, locrag.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: no store configured; create one first")
	})

	t.Run("auto-create leaves status and reset alone", func(t *testing.T) {
		t.Parallel()

		storeFile := filepath.Join(t.TempDir(), "store_name.txt")
		for _, args := range [][]string{{"--auto-create", "status"}, {"--auto-create", "reset"}} {
			stdout := &bytes.Buffer{}
			m := newMain(t, map[string]string{
				"GEMINI_API_KEY":    "test-key",
				"LOCRAG_STORE_FILE": storeFile,
			})

			err := m.Run(context.Background(), args, strings.NewReader(""), stdout, &bytes.Buffer{})
			require.NoError(t, err, args)
			assert.NotContains(t, stdout.String(), "Created store", args)
		}
		_, statErr := os.Stat(storeFile)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("rejects unknown commands", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		m := newMain(t, map[string]string{})

		err := m.Run(context.Background(), []string{"frobnicate"}, strings.NewReader(""), &bytes.Buffer{}, stderr)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
