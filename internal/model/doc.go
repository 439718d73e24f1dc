// Package model defines the course manifest written next to downloaded
// course materials.
//
// A Course holds Chapters, and each Chapter holds Lessons. The structure is
// collected while the curriculum is walked and serialized once per course
// to contents.json with Course.Manifest.
//
// Example:
//
//	course := model.NewCourse("python-bootcamp")
//	ch := course.AddChapter("Getting Started", "")
//	lesson := ch.AddLesson("Welcome!")
//	lesson.Description = "<p>Hello</p>"
//	data, err := course.Manifest()
package model
