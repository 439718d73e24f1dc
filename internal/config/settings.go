package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the file searched for in the working directory and
	// its parents when no explicit path is given.
	ConfigFileName = "config.yaml"

	// DefaultAPIBaseURL is the root of the platform REST API.
	DefaultAPIBaseURL = "https://www.udemy.com/api-2.0"

	// DefaultUserAgent is sent with API requests and landing page fetches.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Settings holds all configuration options.
type Settings struct {
	// Destination is the root folder; each topic is downloaded into
	// Destination/<topic>.
	Destination string `mapstructure:"destination"`

	// Cookie is the browser cookie string of a logged in session. Only its
	// access_token value is used.
	Cookie string `mapstructure:"cookie"`

	// FolderCharLimit is the path length budget for downloaded files.
	FolderCharLimit int `mapstructure:"folder_char_limit"`

	APIBaseURL  string        `mapstructure:"api_base_url"`
	UserAgent   string        `mapstructure:"user_agent"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	Retry       RetrySettings `mapstructure:"retry"`

	// Cover art settings
	SaveCoverArt    bool `mapstructure:"save_cover_art"`
	CoverArtMaxSize int  `mapstructure:"cover_art_max_size"`

	Logging LoggingSettings `mapstructure:"logging"`

	// Topics lists course URLs per topic, in file order.
	Topics []Topic `mapstructure:"-"`
}

// RetrySettings controls retries of failed HTTP requests.
type RetrySettings struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinWait     time.Duration `mapstructure:"min_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
}

// LoggingSettings contains logging options.
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Topic is a named group of courses sharing a destination subfolder.
type Topic struct {
	Name string
	URLs []string
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		FolderCharLimit: 260,
		APIBaseURL:      DefaultAPIBaseURL,
		UserAgent:       DefaultUserAgent,
		HTTPTimeout:     60 * time.Second,
		Retry: RetrySettings{
			MaxAttempts: 10,
			MinWait:     2 * time.Second,
			MaxWait:     10 * time.Second,
		},
		SaveCoverArt:    false,
		CoverArtMaxSize: 600,
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultSettings()
	v.SetDefault("destination", d.Destination)
	v.SetDefault("cookie", d.Cookie)
	v.SetDefault("folder_char_limit", d.FolderCharLimit)
	v.SetDefault("api_base_url", d.APIBaseURL)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("http_timeout", d.HTTPTimeout)
	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.min_wait", d.Retry.MinWait)
	v.SetDefault("retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("save_cover_art", d.SaveCoverArt)
	v.SetDefault("cover_art_max_size", d.CoverArtMaxSize)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Load reads settings from the YAML file at path, the environment and an
// optional .env file in the working directory.
//
// When path is empty, ConfigFileName is searched for in the working
// directory and its parents; if none is found only defaults and the
// environment are used. An explicit path that does not exist is an error.
//
// Environment variables override the file. Besides UDEMY_<KEY> for every
// key (dots become underscores), the following names are recognized:
//
//	UDEMY_COOKIE               cookie
//	UDEMY_DESTINATION_FOLDER   destination
//	UDEMY_FOLDER_CHAR_LIMIT    folder_char_limit
func Load(path string) (*Settings, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("UDEMY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("destination", "UDEMY_DESTINATION_FOLDER", "UDEMY_DESTINATION")
	_ = v.BindEnv("cookie", "UDEMY_COOKIE")
	_ = v.BindEnv("folder_char_limit", "UDEMY_FOLDER_CHAR_LIMIT")

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = FindConfigFile(wd, ConfigFileName)
	}

	var topics []Topic
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var err error
		if topics, err = readTopics(path); err != nil {
			return nil, err
		}
	}

	settings := DefaultSettings()
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	settings.Topics = topics

	return settings, nil
}

// FindConfigFile looks for name in dir and each of its parents and returns
// the first match, or "" when there is none.
func FindConfigFile(dir, name string) string {
	dir = filepath.Clean(dir)
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// readTopics decodes the topics mapping keeping the order and case of the
// topic names, which viper would lowercase.
func readTopics(path string) ([]Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var doc struct {
		Topics yaml.Node `yaml:"topics"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	node := doc.Topics
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("topics: expected a mapping of topic to course URLs (line %d)", node.Line)
	}

	topics := make([]Topic, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		var urls []string
		if err := node.Content[i+1].Decode(&urls); err != nil {
			return nil, fmt.Errorf("topics.%s: %w", name, err)
		}

		kept := urls[:0]
		for _, u := range urls {
			if u = strings.TrimSpace(u); u != "" {
				kept = append(kept, u)
			}
		}
		topics = append(topics, Topic{Name: name, URLs: kept})
	}
	return topics, nil
}

// TopicDestination returns the folder courses of topic are downloaded to.
func (s *Settings) TopicDestination(topic string) string {
	if topic == "" {
		return s.Destination
	}
	return filepath.Join(s.Destination, topic)
}

// Validate checks the settings and reports every problem found.
func (s *Settings) Validate() error {
	var errs []error

	if s.Destination == "" {
		errs = append(errs, errors.New("destination is required (set UDEMY_DESTINATION_FOLDER)"))
	}
	if s.Cookie == "" {
		errs = append(errs, errors.New("cookie is required (set UDEMY_COOKIE)"))
	}
	if s.FolderCharLimit <= 0 {
		errs = append(errs, fmt.Errorf("folder_char_limit must be positive, got %d", s.FolderCharLimit))
	}
	if u, err := url.Parse(s.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid api_base_url: %q", s.APIBaseURL))
	}
	if s.HTTPTimeout < 0 {
		errs = append(errs, fmt.Errorf("http_timeout must not be negative, got %s", s.HTTPTimeout))
	}

	if s.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be at least 1, got %d", s.Retry.MaxAttempts))
	}
	if s.Retry.MinWait < 0 || s.Retry.MaxWait < s.Retry.MinWait {
		errs = append(errs, fmt.Errorf("retry waits must satisfy 0 <= min_wait <= max_wait, got %s and %s", s.Retry.MinWait, s.Retry.MaxWait))
	}

	if s.SaveCoverArt && s.CoverArtMaxSize <= 0 {
		errs = append(errs, fmt.Errorf("cover_art_max_size must be positive, got %d", s.CoverArtMaxSize))
	}

	switch s.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid logging.level: %s", s.Logging.Level))
	}
	switch s.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("invalid logging.format: %s", s.Logging.Format))
	}

	for _, t := range s.Topics {
		if t.Name == "" {
			errs = append(errs, errors.New("topics: empty topic name"))
		}
	}

	return errors.Join(errs...)
}
