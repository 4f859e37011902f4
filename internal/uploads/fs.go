// Package uploads stores attachment files on the local file system.
// Each accepted file gets a stable UUID identifier; files are never
// mutated after writing, only created and served back.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Attachment is the stored form of one uploaded file.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// URL returns the portal path that serves the attachment inline.
func (a Attachment) URL() string {
	return "/attachments/" + a.ID
}

// FS stores attachments flat under a root directory as "<id>_<name>".
type FS struct {
	root string
}

// NewFS creates an attachment store rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("uploads: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

// sanitizeName reduces an uploaded filename to a plain base name with no
// path separators or traversal components.
func sanitizeName(name string) string {
	name = filepath.Base(filepath.Clean(name))
	name = strings.ReplaceAll(name, "..", "")
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
	if name == "" || name == "." {
		name = "file"
	}
	return name
}

// Save stores one uploaded file and returns its attachment reference.
func (f *FS) Save(name string, r io.Reader) (Attachment, error) {
	id := uuid.NewString()
	clean := sanitizeName(name)
	abs := filepath.Join(f.root, id+"_"+clean)

	dst, err := os.Create(abs)
	if err != nil {
		return Attachment{}, fmt.Errorf("uploads: create %s: %w", clean, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, r)
	if err != nil {
		os.Remove(abs)
		return Attachment{}, fmt.Errorf("uploads: write %s: %w", clean, err)
	}
	return Attachment{ID: id, Name: clean, Size: written}, nil
}

// Resolve returns the attachment reference for an id.
func (f *FS) Resolve(id string) (Attachment, error) {
	path, err := f.path(id)
	if err != nil {
		return Attachment{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("uploads: stat %s: %w", id, err)
	}
	base := filepath.Base(path)
	return Attachment{ID: id, Name: strings.TrimPrefix(base, id+"_"), Size: info.Size()}, nil
}

// ResolveAll resolves a list of ids, silently skipping ones whose files
// are gone. Order is preserved.
func (f *FS) ResolveAll(ids []string) []Attachment {
	out := make([]Attachment, 0, len(ids))
	for _, id := range ids {
		if a, err := f.Resolve(id); err == nil {
			out = append(out, a)
		}
	}
	return out
}

// FilePath returns the absolute on-disk path for an attachment id,
// suitable for http.ServeFile.
func (f *FS) FilePath(id string) (string, error) {
	return f.path(id)
}

func (f *FS) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return "", fmt.Errorf("uploads: invalid attachment id %q", id)
	}
	matches, err := filepath.Glob(filepath.Join(f.root, id+"_*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("uploads: attachment %s not found", id)
	}
	return matches[0], nil
}
