package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"

	vferrors "github.com/videofonik/vfconsole/pkg/errors"
)

// form collects multipart/form-data fields and at most one file. Nothing is
// encoded until the request body is read.
type form struct {
	fields    [][2]string
	fileField string
	upload    *Upload
}

func newForm() *form { return &form{} }

func (f *form) field(name, value string) *form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

func (f *form) file(name string, up *Upload) *form {
	if up != nil {
		f.fileField, f.upload = name, up
	}
	return f
}

// encode returns the body and its content type. The body is produced by a
// goroutine writing into a pipe, so an uploaded video is copied from its
// source while the request is sent. Closing the returned reader stops the
// writer.
func (f *form) encode() (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() { pw.CloseWithError(f.write(mw)) }()
	return pr, mw.FormDataContentType()
}

func (f *form) write(mw *multipart.Writer) error {
	for _, kv := range f.fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}
	if f.upload != nil {
		part, err := mw.CreatePart(fileHeader(f.fileField, f.upload))
		if err != nil {
			return err
		}
		if f.upload.Body != nil {
			if _, err := io.Copy(part, f.upload.Body); err != nil {
				return fmt.Errorf("read %s: %w", f.upload.Filename, err)
			}
		}
	}
	return mw.Close()
}

func fileHeader(field string, up *Upload) textproto.MIMEHeader {
	contentType := up.ContentType
	if contentType == "" {
		contentType = vferrors.VideoContentType(up.Filename)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(up.Filename)))
	h.Set("Content-Type", contentType)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// urlencoded returns an application/x-www-form-urlencoded body.
func urlencoded(values url.Values) (io.Reader, string) {
	return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded"
}
