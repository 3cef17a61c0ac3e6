// Package media uploads product images to an external media host and hands
// back the hosted URL. Storage internals live entirely upstream.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Uploader streams an image to the configured host.
type Uploader struct {
	uploadURL string
	http      *http.Client
}

func NewUploader(uploadURL string) *Uploader {
	return &Uploader{
		uploadURL: uploadURL,
		http:      &http.Client{Timeout: 60 * time.Second},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload sends the file under the multipart field "image" and returns the
// hosted URL. The file is streamed through a pipe, never buffered whole.
func (u *Uploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("image", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, pr)
	if err != nil {
		return "", fmt.Errorf("media: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("media: call upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("media: upstream returned %d", resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("media: decode response: %w", err)
	}
	return out.URL, nil
}
