package layout

import (
	"path/filepath"
	"unicode/utf8"

	ioutils "github.com/handiism/udemy-downloader/internal/io"
)

const (
	// DefaultMaxPathLength is the path budget used when none is configured.
	// It matches the classic Windows MAX_PATH.
	DefaultMaxPathLength = 260

	// MinFolderLength is the trim floor: folder names are never shortened
	// below this many characters by the fine-tuning pass.
	MinFolderLength = 3
)

// Outcome tells whether an allocation met the path budget.
type Outcome int

const (
	// Fits means the lesson directory fits within the budget.
	Fits Outcome = iota

	// DegradedToFloor means every name was shortened to the trim floor and
	// the directory is still longer than the budget.
	DegradedToFloor
)

func (o Outcome) String() string {
	switch o {
	case Fits:
		return "fits"
	case DegradedToFloor:
		return "degraded-to-floor"
	default:
		return "unknown"
	}
}

// Request describes one allocation: the current course, chapter and lesson
// folder names plus everything that contributes fixed length to the path.
type Request struct {
	Course  string
	Chapter string
	Lesson  string

	// BaseFolder is the final destination. It is only used for length
	// accounting; nothing is written there during allocation.
	BaseFolder string

	// TempFolder is the staging root the directory is built under.
	TempFolder string

	FileName  string
	MaxLength int
}

// Allocation is the result of Allocate.
type Allocation struct {
	Course  string
	Chapter string
	Lesson  string

	// Dir is TempFolder/Course/Chapter/Lesson, without the file name.
	Dir string

	// Length is the length Dir will have once moved under BaseFolder.
	Length int

	Outcome Outcome
}

// AdjustLength returns how many characters longer the base folder is than
// the staging folder. Paths measured under the staging folder are padded by
// this amount so that they still fit after the final move.
func AdjustLength(baseFolder, tempFolder string) int {
	return max(0, runeLen(filepath.Clean(baseFolder))-runeLen(filepath.Clean(tempFolder)))
}

// Allocate trims the course, chapter and lesson names so that the lesson
// directory fits the path budget once it is moved to the base folder.
//
// The budget left after the fixed part of the path (base folder, file name
// and separators) is first split evenly between the three names. If the
// assembled directory is still too long, the longest name loses one trailing
// character at a time (ties go to course, then chapter, then lesson) until
// the directory fits or every name is at MinFolderLength.
//
// Allocate never fails. A budget that cannot be met yields names at the trim
// floor and an Outcome of DegradedToFloor.
//
// Example:
//
//	alloc := Allocate(Request{
//	    Course:     "Very Long Course Title About Advanced Topics",
//	    Chapter:    "Intro",
//	    Lesson:     "01 - Welcome",
//	    BaseFolder: "/dest",
//	    TempFolder: "/tmp/x",
//	    FileName:   "slides.pdf",
//	    MaxLength:  50,
//	})
//	// alloc.Dir == "/tmp/x/Very Long C/Intro/01 - Welcom"
func Allocate(req Request) Allocation {
	adjust := AdjustLength(req.BaseFolder, req.TempFolder)
	fixed := runeLen(filepath.ToSlash(filepath.Clean(req.BaseFolder))) + runeLen(req.FileName) + 2 + adjust
	third := (req.MaxLength - fixed) / 3

	names := [3]string{
		trimName(req.Course, third),
		trimName(req.Chapter, third),
		trimName(req.Lesson, third),
	}
	dir := func() string {
		return filepath.Join(req.TempFolder, names[0], names[1], names[2])
	}

	for runeLen(dir())+adjust > req.MaxLength {
		longest := 0
		for i := 1; i < len(names); i++ {
			if runeLen(names[i]) > runeLen(names[longest]) {
				longest = i
			}
		}
		n := runeLen(names[longest])
		if n <= MinFolderLength {
			break
		}
		names[longest] = ioutils.SanitizeFolderName(ioutils.TruncateRunes(names[longest], n-1))
	}

	alloc := Allocation{
		Course:  names[0],
		Chapter: names[1],
		Lesson:  names[2],
		Dir:     dir(),
	}
	alloc.Length = runeLen(alloc.Dir) + adjust
	if alloc.Length > req.MaxLength {
		alloc.Outcome = DegradedToFloor
	}
	return alloc
}

// trimName keeps at most n characters of name (at least one) and sanitizes
// the result. Slicing happens before sanitizing.
func trimName(name string, n int) string {
	return ioutils.SanitizeFolderName(ioutils.TruncateRunes(name, max(1, n)))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
