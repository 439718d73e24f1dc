package dto

// Curriculum item classes returned by the curriculum endpoint.
const (
	ClassChapter  = "chapter"
	ClassLecture  = "lecture"
	ClassPractice = "practice"
	ClassQuiz     = "quiz"
)

// AssetTypeArticle marks lectures whose content is an HTML article.
const AssetTypeArticle = "Article"

// CurriculumPage is one page of the subscriber curriculum listing.
type CurriculumPage struct {
	Count    int              `json:"count"`
	Next     string           `json:"next"`
	Previous string           `json:"previous"`
	Results  []CurriculumItem `json:"results"`
}

// CurriculumItem is a chapter, lecture, practice or role-play entry of the
// curriculum, in course order.
type CurriculumItem struct {
	Class       string `json:"_class"`
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ObjectIndex int    `json:"object_index"`
	SortOrder   int    `json:"sort_order"`
	IsPublished bool   `json:"is_published"`
	IsFree      bool   `json:"is_free"`

	// Asset is the main content of a lecture.
	Asset *Asset `json:"asset"`

	// SupplementaryAssets are the downloadable resources of a lecture.
	SupplementaryAssets []SupplementaryAsset `json:"supplementary_assets"`
}

// IsChapter reports whether the item starts a new chapter.
func (i CurriculumItem) IsChapter() bool {
	return i.Class == ClassChapter
}

// IsLecture reports whether the item is a lecture, which has a detail
// endpoint and may carry an article body.
func (i CurriculumItem) IsLecture() bool {
	return i.Class == ClassLecture
}

// Asset is the main content attached to a lecture.
type Asset struct {
	ID        int    `json:"id"`
	Class     string `json:"_class"`
	AssetType string `json:"asset_type"`
	Title     string `json:"title"`
	Filename  string `json:"filename"`
	Body      string `json:"body"`
}

// IsArticle reports whether the asset is an HTML article.
func (a *Asset) IsArticle() bool {
	return a != nil && a.AssetType == AssetTypeArticle
}

// SupplementaryAsset is a downloadable lecture resource such as slides,
// source code or an e-book.
type SupplementaryAsset struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Filename   string `json:"filename"`
	AssetType  string `json:"asset_type"`
	IsExternal bool   `json:"is_external"`

	// DownloadURLs maps an asset type to its download locations.
	DownloadURLs map[string][]DownloadURL `json:"download_urls"`
}

// DownloadURL is one download location of an asset.
type DownloadURL struct {
	Type  string `json:"type"`
	File  string `json:"file"`
	Label string `json:"label"`
}

// FileURL returns the first download location listed under the asset's own
// type. It returns false for external links and assets without downloads.
func (a SupplementaryAsset) FileURL() (string, bool) {
	urls := a.DownloadURLs[a.AssetType]
	if len(urls) == 0 || urls[0].File == "" {
		return "", false
	}
	return urls[0].File, true
}

// Lecture is the detail of a subscribed lecture.
type Lecture struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	IsFree      bool   `json:"is_free"`
	Asset       *Asset `json:"asset"`
}
