package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// FormFile is one file part of a multipart upload.
type FormFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Form is a multipart/form-data body; used by media upload and subscriber import.
type Form struct {
	Fields map[string]string
	Files  []FormFile
}

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range f.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.Files {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// Upload posts form as multipart/form-data.
func Upload[T any](ctx context.Context, c *Client, path string, form *Form) (*Response[T], error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode form for %s: %w", path, err)
	}
	return call[T](ctx, c, request{method: http.MethodPost, path: path, body: body, contentType: contentType})
}
