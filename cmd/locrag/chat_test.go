package main_test

import (
	"strings"
	"testing"

	main "github.com/fwojciec/locrag/cmd/locrag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("runs commands and questions until quit", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, testStore("stores/1"), "")
		env.deps.Stdin = strings.NewReader("/status\n/create\nWhat is the refund policy?\n/quit\nnever read\n")

		require.NoError(t, (&main.ChatCmd{}).Run(env.deps))

		out := env.stdout.String()
		assert.Contains(t, out, "No store configured yet. Use /create to make one.")
		assert.Contains(t, out, "Created store stores/1")
		assert.Contains(t, out, "Refunds are accepted within 30 days.")
		assert.Len(t, env.deps.Session.Turns(), 1)
		assert.Empty(t, env.stderr.String())
	})

	t.Run("prints errors and keeps going", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, testStore("stores/1"), "")
		env.deps.Stdin = strings.NewReader("hello\n/bogus\n/url https://example.com\n")

		require.NoError(t, (&main.ChatCmd{}).Run(env.deps))

		errs := env.stderr.String()
		assert.Contains(t, errs, "error: no store configured; create one first")
		assert.Contains(t, errs, "error: unknown command /bogus; type /help")
		assert.Contains(t, errs, "error: URL ingestion is not available")
	})
}
