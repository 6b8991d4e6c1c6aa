package testutil

import (
	"bytes"
	"mime/multipart"
)

type multipartPart struct {
	field    string
	fileName string
	content  []byte
}

// MultipartBuilder assembles multipart/form-data bodies the way package uploads arrive.
type MultipartBuilder struct {
	files  []multipartPart
	fields [][2]string
}

// NewMultipartUpload creates an empty MultipartBuilder.
func NewMultipartUpload() *MultipartBuilder {
	return &MultipartBuilder{}
}

// WithFile adds a file part.
func (b *MultipartBuilder) WithFile(field, fileName string, content []byte) *MultipartBuilder {
	b.files = append(b.files, multipartPart{field: field, fileName: fileName, content: content})
	return b
}

// WithField adds a plain form field.
func (b *MultipartBuilder) WithField(name, value string) *MultipartBuilder {
	b.fields = append(b.fields, [2]string{name, value})
	return b
}

// Build renders the body and returns it with its Content-Type header value.
func (b *MultipartBuilder) Build(t TestingTB) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range b.fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			t.Fatalf("write field %s: %v", f[0], err)
		}
	}
	for _, p := range b.files {
		part, err := w.CreateFormFile(p.field, p.fileName)
		if err != nil {
			t.Fatalf("create form file %s: %v", p.field, err)
		}
		if _, err := part.Write(p.content); err != nil {
			t.Fatalf("write form file %s: %v", p.field, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}
