package readability_test

import (
	"testing"

	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const policyPage = `<!DOCTYPE html>
<html>
<head><title>Refund Policy</title></head>
<body>
<nav><a href="/home">Home Nav Link</a><a href="/shop">Shop Nav Link</a></nav>
<article>
<h1>Refund Policy</h1>
<p>Customers may return any unused item within 30 days of delivery for a full refund to the original payment method.</p>
<p>Refunds are processed within five business days after the returned item arrives at our warehouse.</p>
</article>
<footer><p>Footer copyright text 2025</p></footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewExtractor().Extract("  \n")
		require.Error(t, err)
		assert.Equal(t, locrag.EINVALID, locrag.ErrorCode(err))
	})

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(policyPage)
		require.NoError(t, err)
		assert.Equal(t, "Refund Policy", result.Title)
	})

	t.Run("keeps article content", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(policyPage)
		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "within 30 days of delivery")
		assert.Contains(t, result.ContentHTML, "five business days")
	})

	t.Run("drops navigation and footer", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(policyPage)
		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "Home Nav Link")
		assert.NotContains(t, result.ContentHTML, "Footer copyright text")
	})
}
