package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(path) {
		t.Error("existing file reported missing")
	}
	if FileExists(dir) {
		t.Error("directory reported as file")
	}
	if FileExists(filepath.Join(dir, "missing.png")) {
		t.Error("missing file reported as existing")
	}
	// Unreadable path component: Stat fails with a non-NotExist error.
	if FileExists(filepath.Join(path, "child")) {
		t.Error("path under a regular file reported as existing")
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	got := GenerateOutputFilename("shots/landing.png", "out", "_annotated", "")
	if got != filepath.Join("out", "landing_annotated.png") {
		t.Errorf("unexpected output path: %q", got)
	}

	got = GenerateOutputFilename("landing.webp", "out", "_annotated", "jpg")
	if got != filepath.Join("out", "landing_annotated.jpg") {
		t.Errorf("format override not applied: %q", got)
	}
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.webp"} {
		if !IsImageFile(name) {
			t.Errorf("%s should be an image file", name)
		}
	}
	for _, name := range []string{"a.txt", "b.gif.pdf", "noext"} {
		if IsImageFile(name) {
			t.Errorf("%s should not be an image file", name)
		}
	}
}
