package udemy

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ErrCourseNotFound is returned when a landing page carries no course id.
//
// This typically occurs when:
//   - The URL is not a course landing page
//   - The course was unpublished or the URL has a typo
//   - The page markup changed
var ErrCourseNotFound = errors.New("course could not be found")

// courseImageRe matches the course image URL published in the og:image meta
// tag. The numeric prefix of the image name is the course id.
var courseImageRe = regexp.MustCompile(`^https://img-c\.udemycdn\.com/course/[^/]+/(\d+)_`)

// CourseSlug returns the course identifier used in course URLs, the path
// segment after /course/:
//
//	CourseSlug("https://www.udemy.com/course/python-bootcamp/learn/") // "python-bootcamp"
func CourseSlug(courseURL string) (string, error) {
	u, err := url.Parse(courseURL)
	if err != nil {
		return "", fmt.Errorf("invalid course URL %q: %w", courseURL, err)
	}

	parts := strings.Split(u.Path, "/")
	if len(parts) < 3 || parts[2] == "" {
		return "", fmt.Errorf("invalid course URL %q: no course name in path", courseURL)
	}
	return parts[2], nil
}

// ParseCourseID extracts the numeric course id from a course landing page.
//
// The id is read from the og:image meta tag, which points at the course
// image:
//
//	<meta property="og:image" content="https://img-c.udemycdn.com/course/750x422/1234567_89ab.jpg">
//
// It returns the id together with the image URL, which serves as cover art.
// Returns ErrCourseNotFound if no matching tag exists.
func ParseCourseID(page string) (int, string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse course page: %w", err)
	}

	var (
		id       int
		imageURL string
	)
	forEachNode(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "meta" || attr(n, "property") != "og:image" {
			return true
		}

		content := attr(n, "content")
		m := courseImageRe.FindStringSubmatch(content)
		if m == nil {
			return true
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return true
		}
		id, imageURL = v, content
		return false
	})

	if imageURL == "" {
		return 0, "", ErrCourseNotFound
	}
	return id, imageURL, nil
}

// forEachNode applies fn to node and its descendants in document order
// until fn returns false.
func forEachNode(node *html.Node, fn func(n *html.Node) bool) bool {
	if !fn(node) {
		return false
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if !forEachNode(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
