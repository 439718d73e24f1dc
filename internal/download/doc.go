// Package download provides the download orchestration logic for
// fetching course materials.
//
// # Manager
//
// The Manager coordinates the entire download process:
//
//  1. Resolve each course URL to its slug and numeric id
//  2. Walk the curriculum chapter by chapter, lesson by lesson
//  3. Download lecture descriptions, article bodies and attachments
//  4. Stage everything in a temporary folder, within the path budget
//  5. Write contents.json and, optionally, cover.jpg
//  6. Move the staged files to <destination>/<topic>/<course>
//
// # Basic Usage
//
//	manager := download.NewManager(settings, api, log, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	err := manager.Initialize(ctx, []download.Job{{
//	    URL:         "https://www.udemy.com/course/python-bootcamp/",
//	    Destination: "/data/courses/Python",
//	}})
//	if err != nil {
//	    log.Warn("some courses could not be resolved", zap.Error(err))
//	}
//
//	err = manager.StartDownloads(ctx)
//
// # Concurrency
//
// Courses are downloaded strictly one after the other. Each course owns its
// staging folder until it is committed.
//
// # Failures
//
// A failing course is reported and the next one started. If moving the
// staged files fails half way, the staging folder is kept on disk and its
// location logged, so no downloaded file is lost.
package download
