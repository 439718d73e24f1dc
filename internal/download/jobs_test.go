package download

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/handiism/udemy-downloader/internal/config"
	"github.com/handiism/udemy-downloader/internal/udemy"
)

func TestJobsFromTopics(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Destination = "/data"
	settings.Topics = []config.Topic{
		{Name: "Python", URLs: []string{
			"https://www.udemy.com/course/python-bootcamp/",
			"https://www.udemy.com/course/automate/learn/lecture/7",
		}},
		{Name: "Go", URLs: []string{"https://www.udemy.com/course/go-guide/", "not a url"}},
	}

	tests := []struct {
		name    string
		only    string
		want    []Job
		wantErr error
	}{
		{
			name: "all topics",
			want: []Job{
				{URL: "https://www.udemy.com/course/python-bootcamp/", Destination: filepath.Join("/data", "Python")},
				{URL: "https://www.udemy.com/course/automate/", Destination: filepath.Join("/data", "Python")},
				{URL: "https://www.udemy.com/course/go-guide/", Destination: filepath.Join("/data", "Go")},
			},
			wantErr: udemy.ErrNoCourseURL,
		},
		{
			name: "one topic",
			only: "Python",
			want: []Job{
				{URL: "https://www.udemy.com/course/python-bootcamp/", Destination: filepath.Join("/data", "Python")},
				{URL: "https://www.udemy.com/course/automate/", Destination: filepath.Join("/data", "Python")},
			},
		},
		{
			name:    "unknown topic",
			only:    "Rust",
			wantErr: ErrUnknownTopic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JobsFromTopics(settings, tt.only)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("JobsFromTopics() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("JobsFromTopics() error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("JobsFromTopics() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobsFromURLs(t *testing.T) {
	jobs, err := JobsFromURLs("https://www.udemy.com/course/a/ https://www.udemy.com/course/b/?x=1", "/out")
	if err != nil {
		t.Fatalf("JobsFromURLs() error = %v", err)
	}
	want := []Job{
		{URL: "https://www.udemy.com/course/a/", Destination: "/out"},
		{URL: "https://www.udemy.com/course/b/", Destination: "/out"},
	}
	if !reflect.DeepEqual(jobs, want) {
		t.Errorf("JobsFromURLs() = %v, want %v", jobs, want)
	}

	if _, err := JobsFromURLs("nothing here", "/out"); !errors.Is(err, udemy.ErrNoCourseURL) {
		t.Errorf("JobsFromURLs() error = %v, want ErrNoCourseURL", err)
	}
}
