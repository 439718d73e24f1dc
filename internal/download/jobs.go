package download

import (
	"errors"
	"fmt"

	"github.com/handiism/udemy-downloader/internal/config"
	"github.com/handiism/udemy-downloader/internal/udemy"
)

// ErrUnknownTopic is returned when a topic filter names no configured topic.
var ErrUnknownTopic = errors.New("unknown topic")

// JobsFromTopics returns one job per course URL of the configured topics,
// in configuration order. When only is non-empty, other topics are skipped.
//
// Entries that are not course URLs are reported in the returned error; the
// jobs built from the other entries are still returned.
func JobsFromTopics(settings *config.Settings, only string) ([]Job, error) {
	var (
		jobs  []Job
		errs  []error
		found bool
	)
	for _, topic := range settings.Topics {
		if only != "" && topic.Name != only {
			continue
		}
		found = true

		dest := settings.TopicDestination(topic.Name)
		for _, raw := range topic.URLs {
			urls, err := udemy.ExtractCourseURLs(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("topic %s: %w", topic.Name, err))
				continue
			}
			for _, u := range urls {
				jobs = append(jobs, Job{URL: u, Destination: dest})
			}
		}
	}

	if only != "" && !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, only)
	}
	return jobs, errors.Join(errs...)
}

// JobsFromURLs returns one job per course URL found in text. All courses
// go to destination.
func JobsFromURLs(text, destination string) ([]Job, error) {
	urls, err := udemy.ExtractCourseURLs(text)
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, len(urls))
	for i, u := range urls {
		jobs[i] = Job{URL: u, Destination: destination}
	}
	return jobs, nil
}
