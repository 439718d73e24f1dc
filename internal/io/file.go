// Package ioutils provides file system utilities for the udemy-downloader.
//
// This package contains functions for:
//   - Folder and file name sanitization
//   - File copying, writing and moving
//   - Directory creation
//
// All functions that accept a context.Context check it before touching
// the file system, though file operations themselves may not be interruptible.
package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/flytam/filenamify"
)

// MaxFolderNameLength is the maximum number of characters kept by
// SanitizeFolderName.
const MaxFolderNameLength = 128

// invalidFolderChars matches characters Windows rejects in folder names:
// < > : " / \ | ? * and control characters 0x00-0x1f.
var invalidFolderChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFolderName turns free text into a folder name that is valid on
// Windows, and therefore everywhere else.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → removed
//   - Trailing dots, commas and whitespace → removed
//   - Leading whitespace → removed
//   - Length → at most MaxFolderNameLength characters
//
// The function never fails and is idempotent:
//
//	SanitizeFolderName("Intro: what's next?")   // Returns "Intro what's next"
//	SanitizeFolderName("Chapter 1...")          // Returns "Chapter 1"
//	SanitizeFolderName("  Lists, tuples,  ")    // Returns "Lists, tuples"
func SanitizeFolderName(text string) string {
	name := invalidFolderChars.ReplaceAllString(text, "")
	name = trimFolderName(name)
	return trimFolderName(TruncateRunes(name, MaxFolderNameLength))
}

func trimFolderName(name string) string {
	name = strings.TrimRightFunc(name, func(r rune) bool {
		return r == '.' || r == ',' || unicode.IsSpace(r)
	})
	return strings.TrimLeftFunc(name, unicode.IsSpace)
}

// TruncateRunes returns the first n characters of s. Lengths are counted in
// runes, not bytes, so multi-byte titles are never cut mid-character.
// A negative n yields the empty string.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// SanitizeFileName makes an attachment file name safe to write to disk.
//
// Reserved characters are replaced with underscores and the result is
// limited to MaxFolderNameLength characters. Names that cannot be
// sanitized fall back to SanitizeFolderName.
//
// Example:
//
//	SanitizeFileName("slides: part 1/2.pdf") // Returns "slides_ part 1_2.pdf"
func SanitizeFileName(name string) string {
	safe, err := filenamify.Filenamify(name, filenamify.Options{
		Replacement: "_",
		MaxLength:   MaxFolderNameLength,
	})
	if err != nil || strings.TrimSpace(safe) == "" {
		return SanitizeFolderName(name)
	}
	return safe
}

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does. The copy is synced to disk before returning.
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	if err := destFile.Sync(); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MoveFile moves src to dst, replacing dst if it exists.
//
// A plain rename is tried first. When that fails (typically because the
// staging directory lives on another device) the file is copied, the copy
// is verified by size, and only then is the source removed. The source is
// left untouched if the copy cannot be verified.
//
// Example:
//
//	err := MoveFile(ctx, "/tmp/udemy-dl-123/course/contents.json", "/courses/course/contents.json")
func MoveFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(renameErr, &linkErr) {
		return renameErr
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := CopyFile(ctx, src, dst); err != nil {
		return fmt.Errorf("move %s: rename failed (%v), copy failed: %w", src, renameErr, err)
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return err
	}
	if dstInfo.Size() != srcInfo.Size() {
		return fmt.Errorf("move %s: copied %d bytes, expected %d", src, dstInfo.Size(), srcInfo.Size())
	}
	return os.Remove(src)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists reports whether a file or directory exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
