package conn

import "fmt"

// ConfigError represents a missing or invalid connection parameter.
type ConfigError struct {
	text string
}

func (r *ConfigError) Error() string {
	return r.text
}

func NewConfigErrorf(format string, a ...interface{}) error {
	return &ConfigError{
		text: fmt.Sprintf(format, a...),
	}
}

// DownloadError represents a failed remote fetch.
type DownloadError struct {
	URL    string
	Status int
}

func (r *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s: status code %d", r.URL, r.Status)
}

// InvalidContentError is returned when a remote flat-file source serves
// HTML instead of tabular data.
type InvalidContentError struct {
	URL         string
	ContentType string
}

func (r *InvalidContentError) Error() string {
	return fmt.Sprintf("invalid content type %q from %s: expected tabular data, got an HTML page", r.ContentType, r.URL)
}

// CsvError wraps a failure while parsing or materializing a flat file.
type CsvError struct {
	Path string
	Err  error
}

func (r *CsvError) Error() string {
	return fmt.Sprintf("failed to process CSV %s: %v", r.Path, r.Err)
}

func (r *CsvError) Unwrap() error {
	return r.Err
}
