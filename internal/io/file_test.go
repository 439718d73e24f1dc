package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"
)

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Normal title", "Normal title"},
		{"Intro: what's next?", "Intro what's next"},
		{`a<b>c:d"e/f\g|h?i*j`, "abcdefghij"},
		{"tab\there\x00\x1f", "tabhere"},
		{"Chapter 1...", "Chapter 1"},
		{"Lists, tuples,  ", "Lists, tuples"},
		{"ends with comma then dot,.", "ends with comma then dot"},
		{"ends with dot then comma.,", "ends with dot then comma"},
		{"   leading spaces", "leading spaces"},
		{"", ""},
		{"???", ""},
		{"Módulo 2 – Introducción", "Módulo 2 – Introducción"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFolderName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFolderName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFolderName_Properties(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 300),
		strings.Repeat("é", 200),
		strings.Repeat("x", 127) + " .tail",
		strings.Repeat("y", 127) + ".",
		strings.Repeat("z", 126) + ", ,more",
		"<<<>>>",
		"mixed\r\n line breaks \n",
		"  ",
	}

	for _, in := range inputs {
		got := SanitizeFolderName(in)

		if n := utf8.RuneCountInString(got); n > MaxFolderNameLength {
			t.Errorf("SanitizeFolderName(%q) has %d characters, want <= %d", in, n, MaxFolderNameLength)
		}
		if strings.ContainsAny(got, `<>:"/\|?*`) {
			t.Errorf("SanitizeFolderName(%q) = %q contains an illegal character", in, got)
		}
		for _, r := range got {
			if r < 0x20 {
				t.Errorf("SanitizeFolderName(%q) = %q contains control character %#x", in, got, r)
			}
		}
		if got != "" {
			last, _ := utf8.DecodeLastRuneInString(got)
			if last == '.' || last == ',' || unicode.IsSpace(last) {
				t.Errorf("SanitizeFolderName(%q) = %q ends with %q", in, got, last)
			}
		}
		if again := SanitizeFolderName(got); again != got {
			t.Errorf("not idempotent: %q -> %q -> %q", in, got, again)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"hello", 3, "hel"},
		{"hello", 10, "hello"},
		{"hello", 0, ""},
		{"hello", -2, ""},
		{"ñandú", 3, "ñan"},
	}

	for _, tt := range tests {
		if got := TruncateRunes(tt.s, tt.n); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	got := SanitizeFileName("slides: part 1/2.pdf")
	if strings.ContainsAny(got, `:/`) {
		t.Errorf("SanitizeFileName kept reserved characters: %q", got)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("SanitizeFileName(%q) = %q, want .pdf extension kept", "slides: part 1/2.pdf", got)
	}

	if got := SanitizeFileName("notes.txt"); got != "notes.txt" {
		t.Errorf("SanitizeFileName(%q) = %q, want unchanged", "notes.txt", got)
	}
}

func TestMoveFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old content"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(ctx, src, dst); err != nil {
		t.Fatalf("MoveFile() error = %v", err)
	}

	if Exists(src) {
		t.Error("source should be gone after move")
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("destination = %q, want %q", data, "payload")
	}
}

func TestMoveFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := MoveFile(context.Background(), filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestMoveFile_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := MoveFile(ctx, src, filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected context error")
	}
	if !Exists(src) {
		t.Error("source must stay in place when the move is cancelled")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(src, []byte("copy me"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	data, _ := os.ReadFile(dst)
	if string(data) != "copy me" {
		t.Errorf("copy = %q, want %q", data, "copy me")
	}
	if !Exists(src) {
		t.Error("CopyFile must keep the source")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() second call error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}
}
