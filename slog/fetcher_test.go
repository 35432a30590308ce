package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/mock"
	locslog "github.com/fwojciec/locrag/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingFetcher(t *testing.T) {
	t.Parallel()

	const pageURL = "https://shop.example.com/help/refunds"

	tests := []struct {
		name    string
		html    string
		err     error
		wantLog []string
	}{
		{
			name:    "successful fetch records page size",
			html:    "<p>Refunds within 30 days.</p>",
			wantLog: []string{"msg=fetch", "url=" + pageURL, "bytes=30", "duration="},
		},
		{
			name:    "failed fetch records the error",
			err:     locrag.Errorf(locrag.EREMOTE, "HTTP 503 for %s", pageURL),
			wantLog: []string{"msg=fetch", "bytes=0", "err=\"HTTP 503 for " + pageURL + "\""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			f := locslog.NewLoggingFetcher(&mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					assert.Equal(t, pageURL, url)
					return tt.html, tt.err
				},
			}, slog.New(slog.NewTextHandler(&buf, nil)))

			html, err := f.Fetch(context.Background(), pageURL)

			assert.Equal(t, tt.html, html)
			assert.Equal(t, tt.err, err)
			for _, want := range tt.wantLog {
				assert.Contains(t, buf.String(), want)
			}
		})
	}

	t.Run("close reaches the wrapped fetcher", func(t *testing.T) {
		t.Parallel()

		closed := 0
		f := locslog.NewLoggingFetcher(&mock.Fetcher{
			CloseFn: func() error { closed++; return nil },
		}, slog.New(slog.DiscardHandler))

		require.NoError(t, f.Close())
		assert.Equal(t, 1, closed)
	})
}
