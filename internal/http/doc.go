// Package http provides an HTTP client configured for the course platform.
//
// The Client in this package handles:
//   - The access_token session cookie
//   - Browser User-Agent and Accept headers
//   - Retries with exponential backoff for transport errors, 408, 429 and 5xx
//   - Download progress callbacks
//
// # Basic Usage
//
//	token, err := http.ParseAccessToken(cookie)
//	client := http.NewClient(http.WithAccessToken(token))
//
//	// Public landing page, no session cookie
//	html, err := client.GetPage(ctx, "https://www.udemy.com/course/python-bootcamp/")
//
//	// API call with query parameters
//	err = client.GetJSON(ctx, apiURL, url.Values{"page_size": {"200"}}, &out)
//
//	// Attachment download
//	data, err := client.DownloadBytes(ctx, fileURL, nil)
//
// # Errors
//
// A response with a non-2xx status yields a *StatusError. Statuses other
// than 408, 429 and 5xx are returned without retrying.
package http
