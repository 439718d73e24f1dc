package layout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ioutils "github.com/handiism/udemy-downloader/internal/io"
	"go.uber.org/zap"
)

// Tree lays out one course under a staging root and later commits it to
// the final destination.
//
// Files are always written below the staging root (Temp). Path lengths are
// nevertheless budgeted as if they lived below the destination (Base), so
// that nothing exceeds the budget after Commit.
type Tree struct {
	base      string
	temp      string
	maxLength int
	log       *zap.Logger
}

// NewTree creates a Tree that stages into temp and commits into base.
// A maxLength <= 0 selects DefaultMaxPathLength. A nil logger disables
// logging.
func NewTree(base, temp string, maxLength int, log *zap.Logger) *Tree {
	if maxLength <= 0 {
		maxLength = DefaultMaxPathLength
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tree{
		base:      filepath.Clean(base),
		temp:      filepath.Clean(temp),
		maxLength: maxLength,
		log:       log,
	}
}

// Base returns the final destination root.
func (t *Tree) Base() string { return t.base }

// Temp returns the staging root.
func (t *Tree) Temp() string { return t.temp }

// MaxLength returns the path budget.
func (t *Tree) MaxLength() int { return t.maxLength }

// CourseDir returns the staging directory of the cursor's course.
func (t *Tree) CourseDir(cur Cursor) string {
	return filepath.Join(t.temp, cur.course.name)
}

// ChapterDir returns the staging directory of the cursor's chapter.
func (t *Tree) ChapterDir(cur Cursor) string {
	return filepath.Join(t.CourseDir(cur), cur.chapter.name)
}

// LessonDir returns the staging directory of the cursor's lesson.
func (t *Tree) LessonDir(cur Cursor) string {
	return filepath.Join(t.ChapterDir(cur), cur.lesson.name)
}

// WriteCourseFile writes data directly into the course folder. It is used
// for course-level files such as the manifest and never trims names.
func (t *Tree) WriteCourseFile(ctx context.Context, cur Cursor, filename string, data []byte) error {
	dir := t.CourseDir(cur)
	if err := ioutils.EnsureDir(dir); err != nil {
		return fmt.Errorf("create course folder: %w", err)
	}
	return ioutils.WriteFile(ctx, filepath.Join(dir, filename), data)
}

// WriteLessonFile writes data into the folder of the lesson identified by
// key, creating it if needed. An existing file is overwritten.
//
// The course, chapter and lesson names are first fitted to the path budget
// with Allocate, then registered again through the Set*Title methods, so an
// already existing folder whose trimmed name changed is renamed rather than
// duplicated. The updated cursor must be used for subsequent calls.
func (t *Tree) WriteLessonFile(ctx context.Context, cur Cursor, key LessonKey, filename string, data []byte) (Cursor, Allocation, error) {
	alloc := Allocate(Request{
		Course:     cur.CourseName(),
		Chapter:    cur.ChapterName(),
		Lesson:     cur.LessonName(),
		BaseFolder: t.base,
		TempFolder: t.temp,
		FileName:   filename,
		MaxLength:  t.maxLength,
	})
	if alloc.Outcome == DegradedToFloor {
		t.log.Warn("path exceeds budget even with minimal folder names",
			zap.String("dir", alloc.Dir),
			zap.String("file", filename),
			zap.Int("length", alloc.Length),
			zap.Int("max_length", t.maxLength),
		)
	}

	var err error
	if cur, _, err = t.SetCourseTitle(cur, key.CourseKey(), alloc.Course); err != nil {
		return cur, alloc, err
	}
	if cur, _, err = t.SetChapterTitle(cur, key.ChapterKey(), alloc.Chapter); err != nil {
		return cur, alloc, err
	}
	if cur, _, err = t.SetLessonTitle(cur, key, alloc.Lesson); err != nil {
		return cur, alloc, err
	}

	if err := ioutils.EnsureDir(alloc.Dir); err != nil {
		return cur, alloc, fmt.Errorf("create lesson folder: %w", err)
	}
	if err := ioutils.WriteFile(ctx, filepath.Join(alloc.Dir, filename), data); err != nil {
		return cur, alloc, err
	}
	return cur, alloc, nil
}

// Discard removes the staging root and everything left in it.
func (t *Tree) Discard() error {
	return os.RemoveAll(t.temp)
}
