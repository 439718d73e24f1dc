package udemy

import (
	"errors"
	"net/url"
	"strings"

	"mvdan.cc/xurls/v2"
)

// ErrNoCourseURL is returned when no course URL can be found in the input.
var ErrNoCourseURL = errors.New("no course URL found")

// ExtractCourseURLs finds all course URLs in free text, such as a pasted
// list, a shell argument or a bookmarks export.
//
// A course URL is any http(s) URL whose path starts with /course/<slug>.
// Query strings, fragments and sub-paths like /learn/lecture/123 are
// dropped, so every course is returned once, as
// https://host/course/<slug>/, in order of first appearance.
//
// Returns ErrNoCourseURL if nothing matches.
//
// Example:
//
//	urls, err := ExtractCourseURLs("see https://www.udemy.com/course/python-bootcamp/learn/lecture/42#overview")
//	// urls == []string{"https://www.udemy.com/course/python-bootcamp/"}
func ExtractCourseURLs(text string) ([]string, error) {
	seen := make(map[string]struct{})
	var urls []string

	for _, link := range xurls.Strict().FindAllString(text, -1) {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}

		parts := strings.Split(u.Path, "/")
		if len(parts) < 3 || parts[1] != "course" || parts[2] == "" {
			continue
		}

		normalized := u.Scheme + "://" + u.Host + "/course/" + parts[2] + "/"
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		urls = append(urls, normalized)
	}

	if len(urls) == 0 {
		return nil, ErrNoCourseURL
	}
	return urls, nil
}
