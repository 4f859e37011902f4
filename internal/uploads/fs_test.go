package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndResolve(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	att, err := fs.Save("commissioning cert.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if att.ID == "" || att.Name != "commissioning cert.pdf" || att.Size != 9 {
		t.Errorf("attachment = %+v", att)
	}

	got, err := fs.Resolve(att.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != att.Name || got.Size != att.Size {
		t.Errorf("resolved = %+v", got)
	}

	path, err := fs.FilePath(att.ID)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestSaveSanitizesName(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}

	att, err := fs.Save("../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(att.Name, "/") || strings.Contains(att.Name, "..") {
		t.Errorf("unsafe name survived: %q", att.Name)
	}
	// The file must land inside the root.
	path, err := fs.FilePath(att.ID)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != fs.root {
		t.Errorf("file escaped root: %s", path)
	}
}

func TestResolveAllSkipsMissing(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	a, err := fs.Save("a.txt", strings.NewReader("a"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.Save("b.txt", strings.NewReader("b"))
	if err != nil {
		t.Fatal(err)
	}

	path, _ := fs.FilePath(a.ID)
	os.Remove(path)

	got := fs.ResolveAll([]string{a.ID, b.ID})
	if len(got) != 1 || got[0].ID != b.ID {
		t.Errorf("resolved = %+v", got)
	}
}

func TestFilePathRejectsTraversal(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"", "../x", "a/b", `a\b`, "a.b"} {
		if _, err := fs.FilePath(id); err == nil {
			t.Errorf("id %q should be rejected", id)
		}
	}
}
