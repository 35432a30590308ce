package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/locrag"
	"gopkg.in/yaml.v3"
)

// ReadUpload reads a local file into an upload named after its base name.
func ReadUpload(path string, maxBytes int64) (*locrag.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, locrag.IOError("read upload", err)
	}
	if info.IsDir() {
		return nil, locrag.Errorf(locrag.EINVALID, "%s is a directory", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, locrag.Errorf(locrag.EINVALID, "%s is %d bytes, larger than the %d byte limit", path, info.Size(), maxBytes)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, locrag.IOError("read upload", err)
	}
	return &locrag.Upload{
		Filename: filepath.Base(path),
		Content:  content,
	}, nil
}

// postsHeader is the YAML frontmatter of a posts file.
type postsHeader struct {
	Topic     string `yaml:"topic"`
	Platform  string `yaml:"platform"`
	Tone      string `yaml:"tone"`
	Generated string `yaml:"generated"`
}

// FormatPosts formats generated posts with YAML frontmatter. Topics are
// free text, so the header is marshalled rather than concatenated.
func FormatPosts(req *locrag.PostRequest, text string, now time.Time) (string, error) {
	header, err := yaml.Marshal(postsHeader{
		Topic:     req.Topic,
		Platform:  string(req.Platform),
		Tone:      req.Tone,
		Generated: now.Format(time.DateOnly),
	})
	if err != nil {
		return "", locrag.WrapError(locrag.EINTERNAL, "format posts", err)
	}
	return "---\n" + string(header) + "---\n\n" + text + "\n", nil
}

// Writer writes generated posts and images to a directory.
type Writer struct {
	baseDir string
	now     func() time.Time
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, now: time.Now}
}

// WritePosts writes posts.md and one file per image, returning the paths
// written.
func (w *Writer) WritePosts(req *locrag.PostRequest, posts *locrag.Posts) ([]string, error) {
	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return nil, locrag.IOError("write posts", err)
	}

	var paths []string
	postsPath := filepath.Join(w.baseDir, "posts.md")
	content, err := FormatPosts(req, posts.Text, w.now())
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(postsPath, []byte(content), 0644); err != nil {
		return nil, locrag.IOError("write posts", err)
	}
	paths = append(paths, postsPath)

	for i, img := range posts.Images {
		p := filepath.Join(w.baseDir, fmt.Sprintf("image-%d%s", i+1, imageExt(img.MIMEType)))
		if err := os.WriteFile(p, img.Data, 0644); err != nil {
			return paths, locrag.IOError("write image", err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func imageExt(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
