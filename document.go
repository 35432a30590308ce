package locrag

import (
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// DocumentState is the indexing state of a remote document.
type DocumentState string

// DocumentState constants mirror the remote service's states.
const (
	DocumentStatePending DocumentState = "pending"
	DocumentStateActive  DocumentState = "active"
	DocumentStateFailed  DocumentState = "failed"
)

// Upload is a document handed to a store for ingestion.
// No local copy is kept once ingestion succeeds.
type Upload struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType"`
	Content  []byte `json:"-"`
}

// Validate returns an error if the upload contains invalid fields.
func (u *Upload) Validate() error {
	if strings.TrimSpace(u.Filename) == "" {
		return Errorf(EINVALID, "upload filename required")
	}
	return nil
}

// ContentType returns the upload's MIME type, falling back to the filename
// extension and then to application/octet-stream.
func (u *Upload) ContentType() string {
	if u.MIMEType != "" {
		return u.MIMEType
	}
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if t, ok := textTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// textTypes covers extensions missing from some system MIME tables.
var textTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".csv":      "text/csv",
}

// Document is a document held by a remote store.
type Document struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"displayName"`
	State       DocumentState `json:"state"`
	MIMEType    string        `json:"mimeType"`
	SizeBytes   int64         `json:"sizeBytes"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Title returns the display name, falling back to the resource name.
func (d *Document) Title() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}
