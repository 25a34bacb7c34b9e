package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
)

// Download is a non-JSON response body, such as a CSV export
type Download struct {
	Body        []byte
	ContentType string
	// Filename is the name suggested by Content-Disposition, "" when absent
	Filename string
}

// Download fetches path as raw bytes. Non-2xx responses are normalized like
// any other request.
func (c *Client) Download(ctx context.Context, path string, query url.Values) (*Download, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, nil,
		WithQuery(query),
		WithHeader("Accept", "text/csv, application/octet-stream, */*"),
	)
	if err != nil {
		return nil, err
	}

	return &Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
	}, nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return filepath.Base(params["filename"])
}

// Upload posts content as a single multipart file field and decodes the JSON
// envelope into out.
func (c *Client) Upload(ctx context.Context, path, field, filename string, content io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	ct := mime.TypeByExtension(filepath.Ext(filename))
	if ct == "" {
		ct = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(filename)))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.call(ctx, http.MethodPost, path, nil, out, []RequestOption{
		WithRawBody(&buf),
		WithContentType(w.FormDataContentType()),
	})
}
