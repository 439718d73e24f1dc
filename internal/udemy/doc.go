// Package udemy talks to the course platform: it resolves course URLs and
// reads a subscribed course's curriculum.
//
// # Course URLs
//
// Course URLs look like https://www.udemy.com/course/<slug>/. The slug names
// the course folder; the numeric id needed by the API is published on the
// public landing page:
//
//	slug, err := udemy.CourseSlug(courseURL)
//	id, imageURL, err := api.CourseID(ctx, courseURL)
//
// ExtractCourseURLs finds course URLs in arbitrary text.
//
// # Curriculum
//
// The curriculum is a flat, ordered list: each chapter item is followed by
// the lectures belonging to it.
//
//	items, err := api.Curriculum(ctx, id)
//	for _, item := range items {
//	    if item.IsChapter() {
//	        continue
//	    }
//	    for _, sa := range item.SupplementaryAssets {
//	        if fileURL, ok := sa.FileURL(); ok {
//	            data, err := api.Download(ctx, fileURL, nil)
//	        }
//	    }
//	}
//
// Requests need the session cookie of a logged in user; see
// http.ParseAccessToken.
package udemy
