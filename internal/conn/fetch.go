package conn

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Some hosts serve an HTML error page to non-browser clients. Present a
// desktop browser header set on flat-file fetches.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36",
	"Accept":          "text/csv,text/plain,application/octet-stream;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// fetchFile downloads url to path, overwriting any previous copy.
func (r *Resolver) fetchFile(url, path string) error {
	resp, err := r.client.Get(url)
	if err != nil {
		return &DownloadError{URL: url, Status: 0}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &DownloadError{URL: url, Status: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}

// fetchCSV downloads a flat file with browser-like headers and rejects
// HTML responses.
func (r *Resolver) fetchCSV(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Status: 0}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &DownloadError{URL: url, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if isHTML(contentType, data) {
		return nil, &InvalidContentError{URL: url, ContentType: contentType}
	}
	return data, nil
}

func isHTML(contentType string, data []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	sniffed := http.DetectContentType(data)
	if strings.Contains(sniffed, "text/html") {
		return true
	}
	head := strings.ToLower(string(data[:min(len(data), 512)]))
	return strings.Contains(head, "<!doctype html") || strings.Contains(head, "<html")
}
