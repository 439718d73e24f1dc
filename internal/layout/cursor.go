package layout

import (
	"fmt"
	"os"
	"path/filepath"

	ioutils "github.com/handiism/udemy-downloader/internal/io"
	"go.uber.org/zap"
)

// CourseKey identifies a course within a download run.
type CourseKey struct {
	Course int
}

// ChapterKey identifies a chapter within a course.
type ChapterKey struct {
	Course  int
	Chapter int
}

// CourseKey returns the key of the chapter's course.
func (k ChapterKey) CourseKey() CourseKey {
	return CourseKey{Course: k.Course}
}

// LessonKey identifies a lesson within a chapter.
type LessonKey struct {
	Course  int
	Chapter int
	Lesson  int
}

// CourseKey returns the key of the lesson's course.
func (k LessonKey) CourseKey() CourseKey {
	return CourseKey{Course: k.Course}
}

// ChapterKey returns the key of the lesson's chapter.
func (k LessonKey) ChapterKey() ChapterKey {
	return ChapterKey{Course: k.Course, Chapter: k.Chapter}
}

// RenameOutcome reports what a Set*Title call did on disk.
type RenameOutcome int

const (
	// Adopted means the key was new at that level; its name became current.
	Adopted RenameOutcome = iota

	// Unchanged means the key and the sanitized name were both unchanged.
	Unchanged

	// NotMaterialized means the name changed but no folder exists yet.
	NotMaterialized

	// Renamed means the existing folder was renamed to the new name.
	Renamed

	// SkippedCollision means a folder with the new name already exists, so
	// the existing folder was left alone.
	SkippedCollision
)

func (o RenameOutcome) String() string {
	switch o {
	case Adopted:
		return "adopted"
	case Unchanged:
		return "unchanged"
	case NotMaterialized:
		return "not-materialized"
	case Renamed:
		return "renamed"
	case SkippedCollision:
		return "skipped-collision"
	default:
		return "unknown"
	}
}

type level[K comparable] struct {
	key  K
	set  bool
	name string
}

// Cursor is the traversal position of a single course download: for each
// of the course, chapter and lesson levels it holds the key being worked on
// and the folder name currently assigned to it.
//
// A Cursor is a value. Tree methods take the current Cursor and return the
// next one, which makes the depth-first, one-entity-per-level walk explicit.
// Cursors must not be shared between concurrent walks.
type Cursor struct {
	course  level[CourseKey]
	chapter level[ChapterKey]
	lesson  level[LessonKey]
}

// CourseName returns the current course folder name.
func (c Cursor) CourseName() string { return c.course.name }

// ChapterName returns the current chapter folder name.
func (c Cursor) ChapterName() string { return c.chapter.name }

// LessonName returns the current lesson folder name.
func (c Cursor) LessonName() string { return c.lesson.name }

// SetCourseTitle registers the title of the course identified by key.
//
// The title is sanitized. If key differs from the cursor's course key the
// name is simply adopted. Otherwise, when the sanitized name differs from
// the current one and the course folder already exists in the staging root,
// the folder is renamed, unless a folder with the new name already exists.
// The returned cursor carries the sanitized name in every case.
func (t *Tree) SetCourseTitle(cur Cursor, key CourseKey, title string) (Cursor, RenameOutcome, error) {
	same := cur.course.set && cur.course.key == key
	name, outcome, err := t.reconcile(t.temp, cur.course.name, same, title)
	if err != nil {
		return cur, outcome, err
	}
	cur.course = level[CourseKey]{key: key, set: true, name: name}
	return cur, outcome, nil
}

// SetChapterTitle registers the title of a chapter. See SetCourseTitle for
// the rename rules; the chapter folder lives in the current course folder.
func (t *Tree) SetChapterTitle(cur Cursor, key ChapterKey, title string) (Cursor, RenameOutcome, error) {
	same := cur.chapter.set && cur.chapter.key == key
	name, outcome, err := t.reconcile(t.CourseDir(cur), cur.chapter.name, same, title)
	if err != nil {
		return cur, outcome, err
	}
	cur.chapter = level[ChapterKey]{key: key, set: true, name: name}
	return cur, outcome, nil
}

// SetLessonTitle registers the title of a lesson. See SetCourseTitle for
// the rename rules; the lesson folder lives in the current chapter folder.
func (t *Tree) SetLessonTitle(cur Cursor, key LessonKey, title string) (Cursor, RenameOutcome, error) {
	same := cur.lesson.set && cur.lesson.key == key
	name, outcome, err := t.reconcile(t.ChapterDir(cur), cur.lesson.name, same, title)
	if err != nil {
		return cur, outcome, err
	}
	cur.lesson = level[LessonKey]{key: key, set: true, name: name}
	return cur, outcome, nil
}

// reconcile sanitizes title and, for an unchanged key, renames parent/current
// to parent/<sanitized title> when that is possible without clobbering
// anything. It returns the sanitized name.
func (t *Tree) reconcile(parent, current string, sameKey bool, title string) (string, RenameOutcome, error) {
	name := ioutils.SanitizeFolderName(title)
	if !sameKey {
		return name, Adopted, nil
	}
	if name == current {
		return name, Unchanged, nil
	}

	// An empty name would point at the parent itself.
	if current == "" || name == "" {
		return name, NotMaterialized, nil
	}

	from := filepath.Join(parent, current)
	if !ioutils.Exists(from) {
		return name, NotMaterialized, nil
	}

	to := filepath.Join(parent, name)
	if ioutils.Exists(to) {
		t.log.Debug("rename target exists, keeping folder",
			zap.String("folder", from),
			zap.String("target", to),
		)
		return name, SkippedCollision, nil
	}

	if err := os.Rename(from, to); err != nil {
		return current, Unchanged, fmt.Errorf("rename folder %s: %w", from, err)
	}
	t.log.Debug("renamed folder", zap.String("from", current), zap.String("to", name))
	return name, Renamed, nil
}
