package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/handiism/udemy-downloader/internal/config"
	ioutils "github.com/handiism/udemy-downloader/internal/io"
	"github.com/handiism/udemy-downloader/internal/layout"
	"github.com/handiism/udemy-downloader/internal/model"
	"github.com/handiism/udemy-downloader/internal/udemy"
	"github.com/handiism/udemy-downloader/internal/udemy/dto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CoverFileName is the name of the course image saved in the course folder.
const CoverFileName = "cover.jpg"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Job is one course to download.
type Job struct {
	// URL is the course landing page.
	URL string

	// Destination is the folder the course folder is created in,
	// typically <destination>/<topic>.
	Destination string
}

// Progress is a snapshot of the download counters.
type Progress struct {
	CoursesTotal  int
	CoursesDone   int
	CoursesFailed int
	Files         int
	Bytes         int64
}

// Percent returns the share of courses finished, successfully or not, in
// the range [0, 1].
func (p Progress) Percent() float64 {
	if p.CoursesTotal == 0 {
		return 0
	}
	return float64(p.CoursesDone+p.CoursesFailed) / float64(p.CoursesTotal)
}

type course struct {
	job      Job
	slug     string
	id       int
	imageURL string
}

// Manager coordinates course downloads.
//
// Courses are processed one at a time, in the order they were given. Each
// course is staged in its own temporary folder and only moved to its
// destination once everything was downloaded.
type Manager struct {
	settings     *config.Settings
	api          *udemy.API
	imageService *ioutils.ImageService
	log          *zap.Logger

	courses []*course

	coursesDone   atomic.Int32
	coursesFailed atomic.Int32
	files         atomic.Int32
	bytes         atomic.Int64

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new download Manager. log and onProgress may be nil.
func NewManager(settings *config.Settings, api *udemy.API, log *zap.Logger, onProgress func(ProgressEvent)) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		settings:     settings,
		api:          api,
		imageService: ioutils.NewImageService(),
		log:          log.Named("download"),
		onProgress:   onProgress,
	}
}

// Initialize resolves the course slug and id of every job.
//
// Jobs that cannot be resolved are reported and skipped; their errors are
// returned joined once all jobs were tried. The remaining courses can still
// be downloaded with StartDownloads.
func (m *Manager) Initialize(ctx context.Context, jobs []Job) error {
	var errs []error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}

		c, err := m.resolve(ctx, job)
		if err != nil {
			m.progress(LevelError, fmt.Sprintf("Error resolving %s: %v", job.URL, err))
			errs = append(errs, fmt.Errorf("%s: %w", job.URL, err))
			continue
		}

		m.courses = append(m.courses, c)
		m.progress(LevelInfo, fmt.Sprintf("Found course: %s (id %d)", c.slug, c.id))
	}
	return errors.Join(errs...)
}

func (m *Manager) resolve(ctx context.Context, job Job) (*course, error) {
	slug, err := udemy.CourseSlug(job.URL)
	if err != nil {
		return nil, err
	}

	m.progress(LevelVerbose, fmt.Sprintf("Fetching course info: %s", job.URL))
	id, imageURL, err := m.api.CourseID(ctx, job.URL)
	if err != nil {
		return nil, err
	}

	return &course{job: job, slug: slug, id: id, imageURL: imageURL}, nil
}

// StartDownloads downloads all initialized courses, one after the other.
//
// A failing course does not stop the others. The returned error joins the
// failure of every course that did not complete.
func (m *Manager) StartDownloads(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(1)

	var (
		errMu sync.Mutex
		errs  []error
	)
	for idx, c := range m.courses {
		idx, c := idx, c
		g.Go(func() error {
			if err := m.downloadCourse(ctx, idx, c); err != nil {
				m.coursesFailed.Add(1)
				m.progress(LevelError, fmt.Sprintf("Failed %s: %v", c.slug, err))

				errMu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", c.slug, err))
				errMu.Unlock()
				return nil
			}
			m.coursesDone.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() Progress {
	return Progress{
		CoursesTotal:  len(m.courses),
		CoursesDone:   int(m.coursesDone.Load()),
		CoursesFailed: int(m.coursesFailed.Load()),
		Files:         int(m.files.Load()),
		Bytes:         m.bytes.Load(),
	}
}

// GetCourseNames returns the names of all initialized courses.
func (m *Manager) GetCourseNames() []string {
	names := make([]string, len(m.courses))
	for i, c := range m.courses {
		names[i] = fmt.Sprintf("%s (id %d) -> %s", c.slug, c.id, c.job.Destination)
	}
	return names
}

func (m *Manager) downloadCourse(ctx context.Context, idx int, c *course) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runID := uuid.NewString()
	log := m.log.With(zap.String("course", c.slug), zap.String("run_id", runID))

	staging, err := os.MkdirTemp("", "udemy-dl-")
	if err != nil {
		return fmt.Errorf("create staging folder: %w", err)
	}
	log.Info("staging course", zap.String("staging", staging), zap.String("destination", c.job.Destination))
	m.progress(LevelInfo, fmt.Sprintf("Downloading %s", c.slug))

	tree := layout.NewTree(c.job.Destination, staging, m.settings.FolderCharLimit, log)
	manifest, cur, err := m.stageCourse(ctx, tree, idx, c, log)
	if err != nil {
		if derr := tree.Discard(); derr != nil {
			log.Warn("failed to remove staging folder", zap.Error(derr))
		}
		return err
	}

	if m.settings.SaveCoverArt && c.imageURL != "" {
		if err := m.saveCover(ctx, tree, cur, c); err != nil {
			m.progress(LevelWarning, fmt.Sprintf("Error saving cover art for %s: %v", c.slug, err))
		}
	}

	data, err := manifest.Manifest()
	if err != nil {
		_ = tree.Discard()
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := tree.WriteCourseFile(ctx, cur, model.ManifestFileName, data); err != nil {
		_ = tree.Discard()
		return fmt.Errorf("write manifest: %w", err)
	}

	report, err := tree.Commit(ctx)
	if err != nil {
		log.Error("commit incomplete, staging folder kept",
			zap.String("staging", staging),
			zap.Int("moved", len(report.Moved)),
			zap.Int("remaining", len(report.Remaining)),
			zap.Error(err),
		)
		return fmt.Errorf("%w (unmoved files kept in %s)", err, staging)
	}
	if err := tree.Discard(); err != nil {
		log.Warn("failed to remove staging folder", zap.Error(err))
	}

	m.progress(LevelSuccess, fmt.Sprintf("Successfully downloaded course: %s (%d lessons, %d files)",
		c.slug, manifest.LessonCount(), len(report.Moved)))
	return nil
}

// stageCourse walks the curriculum and writes every attachment into the
// staging tree. It returns the collected manifest and the final cursor.
func (m *Manager) stageCourse(ctx context.Context, tree *layout.Tree, idx int, c *course, log *zap.Logger) (*model.Course, layout.Cursor, error) {
	cur, _, err := tree.SetCourseTitle(layout.Cursor{}, layout.CourseKey{Course: idx}, c.slug)
	if err != nil {
		return nil, cur, err
	}

	items, err := m.api.Curriculum(ctx, c.id)
	if err != nil {
		return nil, cur, err
	}
	log.Debug("curriculum loaded", zap.Int("items", len(items)))

	manifest := model.NewCourse(c.slug)
	var (
		chapter    *model.Chapter
		chapterIdx int
		lessonIdx  int
	)

	for _, item := range items {
		if item.IsChapter() {
			chapterIdx++
			lessonIdx = 0
			name := ioutils.SanitizeFolderName(item.Title)
			key := layout.ChapterKey{Course: idx, Chapter: chapterIdx}
			if cur, _, err = tree.SetChapterTitle(cur, key, fmt.Sprintf("%03d - %s", chapterIdx, name)); err != nil {
				return nil, cur, err
			}
			chapter = manifest.AddChapter(name, item.Description)
			continue
		}

		// Lessons listed before the first chapter.
		if chapter == nil {
			key := layout.ChapterKey{Course: idx, Chapter: chapterIdx}
			if cur, _, err = tree.SetChapterTitle(cur, key, fmt.Sprintf("%03d - %s", chapterIdx, c.slug)); err != nil {
				return nil, cur, err
			}
			chapter = manifest.AddChapter(c.slug, "")
		}

		lessonIdx++
		key := layout.LessonKey{Course: idx, Chapter: chapterIdx, Lesson: lessonIdx}
		if cur, err = m.stageLesson(ctx, tree, cur, key, c, item, chapter.AddLesson(item.Title)); err != nil {
			return nil, cur, fmt.Errorf("lesson %q: %w", item.Title, err)
		}
	}

	return manifest, cur, nil
}

func (m *Manager) stageLesson(ctx context.Context, tree *layout.Tree, cur layout.Cursor, key layout.LessonKey, c *course, item dto.CurriculumItem, lesson *model.Lesson) (layout.Cursor, error) {
	title := ioutils.SanitizeFolderName(item.Title)
	cur, _, err := tree.SetLessonTitle(cur, key, fmt.Sprintf("%02d - %s", key.Lesson, title))
	if err != nil {
		return cur, err
	}

	if item.IsLecture() {
		detail, err := m.api.Lecture(ctx, c.id, item.ID)
		if err != nil {
			return cur, err
		}
		lesson.Description = detail.Description

		if item.Asset.IsArticle() {
			body, err := m.api.ArticleBody(ctx, c.id, item.ID, item.Asset.ID)
			if err != nil {
				return cur, err
			}
			lesson.Body = body
		}
	}

	for _, sa := range item.SupplementaryAssets {
		fileURL, ok := sa.FileURL()
		if !ok {
			continue
		}

		filename := ioutils.SanitizeFileName(sa.Filename)
		if filename == "" {
			filename = ioutils.SanitizeFileName(sa.Title)
		}
		if filename == "" {
			filename = fmt.Sprintf("asset-%d", sa.ID)
		}

		var last int64
		data, err := m.api.Download(ctx, fileURL, func(written, _ int64) {
			m.bytes.Add(written - last)
			last = written
		})
		if err != nil {
			return cur, fmt.Errorf("download %s: %w", filename, err)
		}

		var alloc layout.Allocation
		if cur, alloc, err = tree.WriteLessonFile(ctx, cur, key, filename, data); err != nil {
			return cur, err
		}
		m.files.Add(1)
		m.progress(LevelVerbose, fmt.Sprintf("Downloaded: %s/%s/%s", alloc.Chapter, alloc.Lesson, filename))
	}

	return cur, nil
}

func (m *Manager) saveCover(ctx context.Context, tree *layout.Tree, cur layout.Cursor, c *course) error {
	data, err := m.api.Download(ctx, c.imageURL, nil)
	if err != nil {
		return err
	}
	cover, err := m.imageService.Cover(ctx, data, m.settings.CoverArtMaxSize)
	if err != nil {
		return err
	}
	if err := tree.WriteCourseFile(ctx, cur, CoverFileName, cover); err != nil {
		return err
	}
	m.progress(LevelVerbose, fmt.Sprintf("Saved cover art for %s", c.slug))
	return nil
}

func (m *Manager) progress(level ProgressLevel, msg string) {
	switch level {
	case LevelError:
		m.log.Error(msg)
	case LevelWarning:
		m.log.Warn(msg)
	case LevelVerbose:
		m.log.Debug(msg)
	default:
		m.log.Info(msg)
	}

	if m.onProgress != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.onProgress(ProgressEvent{Message: msg, Level: level})
	}
}
