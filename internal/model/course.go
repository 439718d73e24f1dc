package model

import (
	"bytes"
	"encoding/json"
)

// ManifestFileName is the name of the per-course manifest written to the
// course folder.
const ManifestFileName = "contents.json"

// Course is the downloaded curriculum of one course, as written to the
// manifest.
//
// Example manifest:
//
//	{
//	    "course_name": "python-bootcamp",
//	    "chapters": [
//	        {
//	            "chapter_name": "Getting Started",
//	            "contents": [
//	                {
//	                    "lesson_name": "Welcome!",
//	                    "description": "<p>What you will learn</p>"
//	                }
//	            ]
//	        }
//	    ]
//	}
type Course struct {
	// CourseName is the course slug taken from the course URL.
	CourseName string `json:"course_name"`

	Chapters []*Chapter `json:"chapters"`
}

// Chapter is a curriculum section.
type Chapter struct {
	// ChapterName is the sanitized chapter title, without the number prefix
	// used for its folder.
	ChapterName string `json:"chapter_name"`

	Description string `json:"description,omitempty"`

	Contents []*Lesson `json:"contents"`
}

// Lesson is a lecture, practice or role-play item of a chapter.
type Lesson struct {
	// LessonName is the title as published by the platform.
	LessonName string `json:"lesson_name"`

	// Description is the lecture description (HTML), if any.
	Description string `json:"description,omitempty"`

	// Body is the article text (HTML) for article lectures.
	Body string `json:"body,omitempty"`
}

// NewCourse creates an empty course manifest.
func NewCourse(name string) *Course {
	return &Course{
		CourseName: name,
		Chapters:   []*Chapter{},
	}
}

// AddChapter appends a chapter and returns it.
func (c *Course) AddChapter(name, description string) *Chapter {
	ch := &Chapter{
		ChapterName: name,
		Description: description,
		Contents:    []*Lesson{},
	}
	c.Chapters = append(c.Chapters, ch)
	return ch
}

// LastChapter returns the most recently added chapter, or nil.
func (c *Course) LastChapter() *Chapter {
	if len(c.Chapters) == 0 {
		return nil
	}
	return c.Chapters[len(c.Chapters)-1]
}

// LessonCount returns the number of lessons across all chapters.
func (c *Course) LessonCount() int {
	n := 0
	for _, ch := range c.Chapters {
		n += len(ch.Contents)
	}
	return n
}

// AddLesson appends a lesson to the chapter and returns it.
func (ch *Chapter) AddLesson(name string) *Lesson {
	l := &Lesson{LessonName: name}
	ch.Contents = append(ch.Contents, l)
	return l
}

// Manifest encodes the course as JSON indented by four spaces. HTML in
// descriptions and bodies is not escaped.
func (c *Course) Manifest() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
