package layout

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestTree(t *testing.T, maxLength int) *Tree {
	t.Helper()
	root := t.TempDir()
	return NewTree(filepath.Join(root, "out"), filepath.Join(root, "staging"), maxLength, nil)
}

func titled(t *testing.T, tree *Tree, course, chapter, lesson string) Cursor {
	t.Helper()
	cur, _, err := tree.SetCourseTitle(Cursor{}, CourseKey{}, course)
	if err != nil {
		t.Fatalf("SetCourseTitle: %v", err)
	}
	cur, _, err = tree.SetChapterTitle(cur, ChapterKey{Chapter: 1}, chapter)
	if err != nil {
		t.Fatalf("SetChapterTitle: %v", err)
	}
	cur, _, err = tree.SetLessonTitle(cur, LessonKey{Chapter: 1, Lesson: 1}, lesson)
	if err != nil {
		t.Fatalf("SetLessonTitle: %v", err)
	}
	return cur
}

func TestSetTitle_Outcomes(t *testing.T) {
	tree := newTestTree(t, 260)
	key := LessonKey{Chapter: 1, Lesson: 1}

	cur, outcome, err := tree.SetCourseTitle(Cursor{}, CourseKey{}, "python-bootcamp")
	if err != nil || outcome != Adopted {
		t.Fatalf("SetCourseTitle = %v, %v; want adopted", outcome, err)
	}
	if cur.CourseName() != "python-bootcamp" {
		t.Errorf("CourseName() = %q", cur.CourseName())
	}

	cur, _, _ = tree.SetChapterTitle(cur, key.ChapterKey(), "001 - Basics")
	cur, _, _ = tree.SetLessonTitle(cur, key, "01 - Setup")

	cur, outcome, err = tree.SetLessonTitle(cur, key, "01 - Setup")
	if err != nil || outcome != Unchanged {
		t.Errorf("same title = %v, %v; want unchanged", outcome, err)
	}

	cur, outcome, err = tree.SetLessonTitle(cur, key, "01 - Setup: Windows")
	if err != nil || outcome != NotMaterialized {
		t.Errorf("new title without folder = %v, %v; want not-materialized", outcome, err)
	}
	if cur.LessonName() != "01 - Setup Windows" {
		t.Errorf("LessonName() = %q, want %q", cur.LessonName(), "01 - Setup Windows")
	}
}

func TestSetLessonTitle_RenamesExistingFolder(t *testing.T) {
	tree := newTestTree(t, 260)
	cur := titled(t, tree, "Course", "001 - Intro", "01 - First")

	oldDir := tree.LessonDir(cur)
	if err := os.MkdirAll(oldDir, 0755); err != nil {
		t.Fatal(err)
	}

	cur, outcome, err := tree.SetLessonTitle(cur, LessonKey{Chapter: 1, Lesson: 1}, "01 - First: Revised")
	if err != nil {
		t.Fatalf("SetLessonTitle: %v", err)
	}
	if outcome != Renamed {
		t.Errorf("outcome = %v, want renamed", outcome)
	}
	if cur.LessonName() != "01 - First Revised" {
		t.Errorf("LessonName() = %q, want %q", cur.LessonName(), "01 - First Revised")
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Errorf("old folder still exists")
	}
	if info, err := os.Stat(tree.LessonDir(cur)); err != nil || !info.IsDir() {
		t.Errorf("renamed folder missing: %v", err)
	}
}

func TestSetLessonTitle_SkipsCollision(t *testing.T) {
	tree := newTestTree(t, 260)
	cur := titled(t, tree, "Course", "001 - Intro", "01 - A")

	chapterDir := tree.ChapterDir(cur)
	for _, name := range []string{"01 - A", "01 - B"} {
		if err := os.MkdirAll(filepath.Join(chapterDir, name), 0755); err != nil {
			t.Fatal(err)
		}
	}

	cur, outcome, err := tree.SetLessonTitle(cur, LessonKey{Chapter: 1, Lesson: 1}, "01 - B")
	if err != nil {
		t.Fatalf("SetLessonTitle: %v", err)
	}
	if outcome != SkippedCollision {
		t.Errorf("outcome = %v, want skipped-collision", outcome)
	}
	if cur.LessonName() != "01 - B" {
		t.Errorf("LessonName() = %q, want %q", cur.LessonName(), "01 - B")
	}
	for _, name := range []string{"01 - A", "01 - B"} {
		if _, err := os.Stat(filepath.Join(chapterDir, name)); err != nil {
			t.Errorf("folder %q: %v", name, err)
		}
	}
}

func TestSetLessonTitle_NewKeyLeavesPreviousFolder(t *testing.T) {
	tree := newTestTree(t, 260)
	cur := titled(t, tree, "Course", "001 - Intro", "01 - First")

	first := tree.LessonDir(cur)
	if err := os.MkdirAll(first, 0755); err != nil {
		t.Fatal(err)
	}

	cur, outcome, err := tree.SetLessonTitle(cur, LessonKey{Chapter: 1, Lesson: 2}, "02 - Second")
	if err != nil {
		t.Fatalf("SetLessonTitle: %v", err)
	}
	if outcome != Adopted {
		t.Errorf("outcome = %v, want adopted", outcome)
	}
	if _, err := os.Stat(first); err != nil {
		t.Errorf("previous lesson folder touched: %v", err)
	}
	if cur.LessonName() != "02 - Second" {
		t.Errorf("LessonName() = %q", cur.LessonName())
	}
}

func TestWriteLessonFile(t *testing.T) {
	tree := newTestTree(t, 260)
	cur := titled(t, tree, "python-bootcamp", "001 - Basics", "01 - Setup")
	key := LessonKey{Chapter: 1, Lesson: 1}

	cur, alloc, err := tree.WriteLessonFile(context.Background(), cur, key, "notes.html", []byte("<p>hi</p>"))
	if err != nil {
		t.Fatalf("WriteLessonFile: %v", err)
	}
	if alloc.Outcome != Fits {
		t.Errorf("Outcome = %v, want fits", alloc.Outcome)
	}

	want := filepath.Join(tree.Temp(), "python-bootcamp", "001 - Basics", "01 - Setup", "notes.html")
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	if string(data) != "<p>hi</p>" {
		t.Errorf("content = %q", data)
	}
	if tree.LessonDir(cur) != filepath.Dir(want) {
		t.Errorf("LessonDir() = %q, want %q", tree.LessonDir(cur), filepath.Dir(want))
	}
}

func TestWriteLessonFile_TrimRenamesExistingFolders(t *testing.T) {
	root := t.TempDir()
	temp := filepath.Join(root, "staging-area-xyz")
	base := filepath.Join(root, "o")

	// Exactly long enough for the untrimmed lesson folder.
	maxLength := runeLen(temp) + 3 + runeLen("Course Title") + runeLen("001 - Chapter") + runeLen("01 - Lesson")
	tree := NewTree(base, temp, maxLength, nil)

	cur := titled(t, tree, "Course Title", "001 - Chapter", "01 - Lesson")
	key := LessonKey{Chapter: 1, Lesson: 1}
	ctx := context.Background()

	cur, alloc, err := tree.WriteLessonFile(ctx, cur, key, "a", []byte("a"))
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	if alloc.Lesson != "01 - Lesson" {
		t.Fatalf("first write trimmed lesson to %q", alloc.Lesson)
	}

	// A longer file name shrinks every folder name to ten characters.
	cur, alloc, err = tree.WriteLessonFile(ctx, cur, key, "slides-with-long-n.pdf", []byte("pdf"))
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	wantDir := filepath.Join(temp, "Course Tit", "001 - Chap", "01 - Lesso")
	if alloc.Dir != wantDir {
		t.Errorf("Dir = %q, want %q", alloc.Dir, wantDir)
	}
	if tree.LessonDir(cur) != wantDir {
		t.Errorf("LessonDir() = %q, want %q", tree.LessonDir(cur), wantDir)
	}

	for _, name := range []string{"a", "slides-with-long-n.pdf"} {
		if _, err := os.Stat(filepath.Join(wantDir, name)); err != nil {
			t.Errorf("%s not in renamed folder: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(temp, "Course Title")); !os.IsNotExist(err) {
		t.Errorf("old course folder left behind")
	}
}

func TestWriteCourseFile_DoesNotTrim(t *testing.T) {
	tree := newTestTree(t, 10)
	course := strings.Repeat("long course name ", 5)
	cur, _, err := tree.SetCourseTitle(Cursor{}, CourseKey{}, course)
	if err != nil {
		t.Fatal(err)
	}

	if err := tree.WriteCourseFile(context.Background(), cur, "contents.json", []byte("{}")); err != nil {
		t.Fatalf("WriteCourseFile: %v", err)
	}

	want := filepath.Join(tree.Temp(), strings.TrimSpace(course), "contents.json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("manifest not at %q: %v", want, err)
	}
}

func TestCommit(t *testing.T) {
	tree := newTestTree(t, 260)
	ctx := context.Background()

	cur := titled(t, tree, "Course", "001 - Intro", "01 - Welcome")
	cur, _, err := tree.WriteLessonFile(ctx, cur, LessonKey{Chapter: 1, Lesson: 1}, "notes.html", []byte("new"))
	if err != nil {
		t.Fatal(err)
	}
	cur, _, err = tree.SetLessonTitle(cur, LessonKey{Chapter: 1, Lesson: 2}, "02 - Next")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := tree.WriteLessonFile(ctx, cur, LessonKey{Chapter: 1, Lesson: 2}, "code.zip", []byte("zip")); err != nil {
		t.Fatal(err)
	}
	if err := tree.WriteCourseFile(ctx, cur, "contents.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}

	// A stale copy at the destination is replaced.
	stale := filepath.Join(tree.Base(), "Course", "001 - Intro", "01 - Welcome", "notes.html")
	if err := os.MkdirAll(filepath.Dir(stale), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	report, err := tree.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(report.Moved) != 3 || len(report.Remaining) != 0 {
		t.Errorf("report = %+v, want 3 moved", report)
	}

	for rel, want := range map[string]string{
		filepath.Join("Course", "001 - Intro", "01 - Welcome", "notes.html"): "new",
		filepath.Join("Course", "001 - Intro", "02 - Next", "code.zip"):      "zip",
		filepath.Join("Course", "contents.json"):                             "{}",
	} {
		got, err := os.ReadFile(filepath.Join(tree.Base(), rel))
		if err != nil {
			t.Errorf("%s: %v", rel, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", rel, got, want)
		}
	}

	err = filepath.WalkDir(tree.Temp(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			t.Errorf("file left in staging: %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := tree.Discard(); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := os.Stat(tree.Temp()); !os.IsNotExist(err) {
		t.Errorf("staging root still exists")
	}
}

func TestCommit_StopsOnFailure(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "out")
	// A regular file where the destination folder should be.
	if err := os.WriteFile(base, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	tree := NewTree(base, filepath.Join(root, "staging"), 260, nil)

	cur := titled(t, tree, "Course", "001 - Intro", "01 - Welcome")
	if _, _, err := tree.WriteLessonFile(context.Background(), cur, LessonKey{Chapter: 1, Lesson: 1}, "a.txt", []byte("a")); err != nil {
		t.Fatal(err)
	}

	report, err := tree.Commit(context.Background())
	if err == nil {
		t.Fatal("Commit succeeded, want error")
	}
	if len(report.Moved) != 0 || len(report.Remaining) != 1 {
		t.Errorf("report = %+v, want 1 remaining", report)
	}
	if _, err := os.Stat(filepath.Join(tree.LessonDir(cur), "a.txt")); err != nil {
		t.Errorf("staged file lost: %v", err)
	}
}
