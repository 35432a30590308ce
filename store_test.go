package locrag_test

import (
	"testing"

	"github.com/fwojciec/locrag"
	"github.com/stretchr/testify/assert"
)

func TestRetrievalResult_Empty(t *testing.T) {
	t.Parallel()

	var nilResult *locrag.RetrievalResult

	assert.True(t, nilResult.Empty())
	assert.True(t, (&locrag.RetrievalResult{Question: "q"}).Empty())
	assert.False(t, (&locrag.RetrievalResult{Snippets: []locrag.Snippet{{Text: "x"}}}).Empty())
}

func TestRetrievalResult_Sources(t *testing.T) {
	t.Parallel()

	r := &locrag.RetrievalResult{
		Snippets: []locrag.Snippet{
			{Rank: 1, Title: "notes.txt"},
			{Rank: 2, DocumentName: "fileSearchStores/s/documents/d2"},
			{Rank: 3, Title: "notes.txt"},
			{Rank: 4, URI: "https://example.com/faq"},
			{Rank: 5},
		},
	}

	assert.Equal(t, []string{
		"notes.txt",
		"fileSearchStores/s/documents/d2",
		"https://example.com/faq",
	}, r.Sources())
}

func TestUpload_ContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		upload locrag.Upload
		want   string
	}{
		{"explicit type wins", locrag.Upload{Filename: "a.txt", MIMEType: "application/pdf"}, "application/pdf"},
		{"markdown", locrag.Upload{Filename: "README.MD"}, "text/markdown"},
		{"plain text", locrag.Upload{Filename: "notes.txt"}, "text/plain"},
		{"unknown extension", locrag.Upload{Filename: "blob.zzzunknown"}, "application/octet-stream"},
		{"no extension", locrag.Upload{Filename: "Makefile"}, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.upload.ContentType())
		})
	}
}

func TestUpload_Validate(t *testing.T) {
	t.Parallel()

	err := (&locrag.Upload{Filename: "  "}).Validate()

	assert.Equal(t, locrag.EINVALID, locrag.ErrorCode(err))
	assert.NoError(t, (&locrag.Upload{Filename: "notes.txt"}).Validate())
}

func TestDocument_Title(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "notes.txt", (&locrag.Document{Name: "fileSearchStores/s/documents/d", DisplayName: "notes.txt"}).Title())
	assert.Equal(t, "fileSearchStores/s/documents/d", (&locrag.Document{Name: "fileSearchStores/s/documents/d"}).Title())
}
