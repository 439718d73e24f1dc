package udemy

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/handiism/udemy-downloader/internal/config"
	"github.com/handiism/udemy-downloader/internal/http"
	"github.com/handiism/udemy-downloader/internal/udemy/dto"
	"go.uber.org/zap"
)

// curriculumFields selects what the curriculum listing returns. Quizzes are
// left out: they have no downloadable material.
var curriculumFields = url.Values{
	"curriculum_types": {"chapter,lecture,practice,role-play"},
	"page_size":        {"200"},
	"fields[lecture]":  {"title,object_index,is_published,sort_order,created,asset,supplementary_assets,is_free"},
	"fields[quiz]":     {"title,object_index,is_published,sort_order,type"},
	"fields[practice]": {"title,object_index,is_published,sort_order"},
	"fields[chapter]":  {"title,object_index,is_published,sort_order"},
	"fields[asset]":    {"title,filename,asset_type,status,time_estimation,is_external,download_urls"},
	"caching_intent":   {"True"},
}

var lectureFields = url.Values{
	"fields[lecture]": {"asset,description,download_url,is_free,last_watched_second"},
	"fields[asset]":   {"asset_type,length,media_license_token,course_is_drmed,media_sources,captions,thumbnail_sprite,slides,slide_urls,download_urls,external_url,body"},
}

// API calls the platform REST API on behalf of a logged in user.
//
// Example usage:
//
//	api := udemy.NewAPI(client, "https://www.udemy.com/api-2.0", log)
//
//	id, imageURL, err := api.CourseID(ctx, "https://www.udemy.com/course/python-bootcamp/")
//	items, err := api.Curriculum(ctx, id)
//	for _, item := range items {
//	    fmt.Println(item.Class, item.Title)
//	}
type API struct {
	client  *http.Client
	baseURL string
	log     *zap.Logger
}

// NewAPI creates an API client. baseURL is the API root, without a trailing
// slash.
func NewAPI(client *http.Client, baseURL string, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// CourseID loads the public landing page of a course and returns its
// numeric id and image URL. See ParseCourseID.
func (a *API) CourseID(ctx context.Context, courseURL string) (int, string, error) {
	page, err := a.client.GetPage(ctx, courseURL)
	if err != nil {
		return 0, "", fmt.Errorf("failed to load course page: %w", err)
	}
	id, imageURL, err := ParseCourseID(page)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %s", err, courseURL)
	}
	return id, imageURL, nil
}

// Curriculum returns every chapter, lecture, practice and role-play item of
// the course in order, following pagination.
func (a *API) Curriculum(ctx context.Context, courseID int) ([]dto.CurriculumItem, error) {
	next := fmt.Sprintf("%s/courses/%d/subscriber-curriculum-items/", a.baseURL, courseID)
	params := curriculumFields
	seen := make(map[string]struct{})

	var items []dto.CurriculumItem
	for next != "" {
		if _, ok := seen[next]; ok {
			return nil, fmt.Errorf("curriculum pagination loops at %s", next)
		}
		seen[next] = struct{}{}

		var page dto.CurriculumPage
		if err := a.client.GetJSON(ctx, next, params, &page); err != nil {
			return nil, fmt.Errorf("failed to get curriculum: %w", err)
		}
		items = append(items, page.Results...)

		a.log.Debug("curriculum page",
			zap.Int("course_id", courseID),
			zap.Int("items", len(items)),
			zap.Int("count", page.Count),
		)

		// Next links already carry the query string.
		next, params = page.Next, nil
	}
	return items, nil
}

// Lecture returns the detail of a lecture, including its description.
func (a *API) Lecture(ctx context.Context, courseID, lectureID int) (*dto.Lecture, error) {
	u := fmt.Sprintf("%s/users/me/subscribed-courses/%d/lectures/%d/", a.baseURL, courseID, lectureID)

	var lecture dto.Lecture
	if err := a.client.GetJSON(ctx, u, lectureFields, &lecture); err != nil {
		return nil, fmt.Errorf("failed to get lecture %d: %w", lectureID, err)
	}
	return &lecture, nil
}

// ArticleBody returns the HTML body of an article asset.
func (a *API) ArticleBody(ctx context.Context, courseID, lectureID, assetID int) (string, error) {
	u := fmt.Sprintf("%s/assets/%d/", a.baseURL, assetID)
	params := url.Values{
		"fields[asset]": {"@min,status,delayed_asset_message,processing_errors,body"},
		"course_id":     {strconv.Itoa(courseID)},
		"lecture_id":    {strconv.Itoa(lectureID)},
	}

	var asset dto.Asset
	if err := a.client.GetJSON(ctx, u, params, &asset); err != nil {
		return "", fmt.Errorf("failed to get article %d: %w", assetID, err)
	}
	return asset.Body, nil
}

// Download fetches a supplementary asset or image. onProgress may be nil.
func (a *API) Download(ctx context.Context, fileURL string, onProgress func(written, total int64)) ([]byte, error) {
	return a.client.DownloadBytes(ctx, fileURL, onProgress)
}

// NewAPIFromSettings builds an HTTP client from the session cookie and
// request settings and returns an API on top of it.
func NewAPIFromSettings(settings *config.Settings, log *zap.Logger) (*API, error) {
	token, err := http.ParseAccessToken(settings.Cookie)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	client := http.NewClient(
		http.WithAccessToken(token),
		http.WithUserAgent(settings.UserAgent),
		http.WithTimeout(settings.HTTPTimeout),
		http.WithRetry(settings.Retry.MaxAttempts, settings.Retry.MinWait, settings.Retry.MaxWait),
		http.WithLogger(log.Named("http")),
	)
	return NewAPI(client, settings.APIBaseURL, log.Named("api")), nil
}
