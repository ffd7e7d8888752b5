package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	dErrors "certledger/pkg/domain-errors"
)

// HTTPUploader stores documents with an external media service over multipart
// HTTP. The service assigns the public ID and durable URL.
type HTTPUploader struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Uploader = (*HTTPUploader)(nil)

// HTTPUploaderOption configures the HTTPUploader.
type HTTPUploaderOption func(*HTTPUploader)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) HTTPUploaderOption {
	return func(u *HTTPUploader) {
		u.httpClient = client
	}
}

// NewHTTPUploader creates an uploader against the media service.
func NewHTTPUploader(baseURL, apiKey string, timeout time.Duration, opts ...HTTPUploaderOption) *HTTPUploader {
	u := &HTTPUploader{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type uploadResponse struct {
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
	Bytes     int64  `json:"bytes"`
	Format    string `json:"format"`
	CreatedAt string `json:"created_at"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Upload stores the document and returns its durable location.
func (u *HTTPUploader) Upload(ctx context.Context, data []byte, folder, filename string) (*Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("folder", folder); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "building upload request")
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "building upload request")
	}
	if _, err := part.Write(data); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "building upload request")
	}
	if err := mw.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "building upload request")
	}

	url := fmt.Sprintf("%s/v1/files", u.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "building upload request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-Key", u.apiKey)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "upload timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUploadFailed, "media service unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUploadFailed, "reading upload response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp errorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Message != "" {
			return nil, dErrors.New(dErrors.CodeUploadFailed,
				fmt.Sprintf("media service rejected upload: %s", errResp.Message))
		}
		return nil, dErrors.New(dErrors.CodeUploadFailed,
			fmt.Sprintf("media service returned status %d", resp.StatusCode))
	}

	var ur uploadResponse
	if err := json.Unmarshal(raw, &ur); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUploadFailed, "parsing upload response")
	}
	if ur.URL == "" || ur.PublicID == "" {
		return nil, dErrors.New(dErrors.CodeUploadFailed, "upload response missing url or public id")
	}

	createdAt, err := time.Parse(time.RFC3339, ur.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}

	return &Result{
		URL:       ur.URL,
		PublicID:  ur.PublicID,
		Bytes:     ur.Bytes,
		Format:    ur.Format,
		CreatedAt: createdAt,
	}, nil
}
