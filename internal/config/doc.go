// Package config provides configuration management for udemy-downloader.
//
// Settings come from three places, later ones winning:
//   - Defaults from DefaultSettings
//   - A config.yaml file, found in the working directory or one of its parents
//   - Environment variables, including those from a .env file
//
// # Loading
//
//	settings, err := config.Load("") // search for config.yaml
//	if err != nil {
//	    return err
//	}
//	if err := settings.Validate(); err != nil {
//	    return err
//	}
//
// # File Format
//
//	destination: /data/courses
//	folder_char_limit: 260
//	retry:
//	  max_attempts: 10
//	  min_wait: 2s
//	  max_wait: 10s
//	topics:
//	  Python:
//	    - https://www.udemy.com/course/python-bootcamp/
//
// Each topic is downloaded into destination/<topic>. Topic order and case
// are kept as written.
//
// The session cookie is normally supplied through UDEMY_COOKIE rather than
// the file.
package config
