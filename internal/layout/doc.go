// Package layout decides where course files go on disk.
//
// A course is laid out as course/chapter/lesson folders below a destination
// root. Titles come from the platform as free text, so every folder name is
// sanitized and the whole path is kept within a character budget
// (260 by default).
//
// # Allocation
//
// Allocate fits the three folder names into the budget: the space left after
// the destination root, separators and file name is split evenly, then the
// longest name is shortened one character at a time until the path fits or
// every name is down to MinFolderLength characters.
//
// # Tracking
//
// A Cursor records which course, chapter and lesson are being worked on and
// which folder name each currently has. Tree.SetCourseTitle,
// Tree.SetChapterTitle and Tree.SetLessonTitle return the next Cursor; when a
// name changes for an entity whose folder already exists, the folder is
// renamed instead of duplicated:
//
//	tree := layout.NewTree("/courses/python", stagingDir, 260, log)
//	cur := layout.Cursor{}
//	cur, _, err := tree.SetCourseTitle(cur, layout.CourseKey{}, "python-bootcamp")
//	cur, _, err = tree.SetChapterTitle(cur, layout.ChapterKey{Chapter: 1}, "001 - Basics")
//	cur, _, err = tree.SetLessonTitle(cur, layout.LessonKey{Chapter: 1, Lesson: 1}, "01 - Setup")
//
// # Staging and Commit
//
// Files are written below the staging root and moved to the destination in
// one pass at the end:
//
//	cur, alloc, err := tree.WriteLessonFile(ctx, cur, key, "slides.pdf", data)
//	err = tree.WriteCourseFile(ctx, cur, "contents.json", manifest)
//	report, err := tree.Commit(ctx)
//	if err == nil {
//	    tree.Discard()
//	}
//
// A Tree and its Cursor serve one sequential walk of one course. They are
// not safe for concurrent use.
package layout
