package backend

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/iho/masjid-console/internal/domain"
)

// formBody builds either a JSON or a multipart request depending on whether
// a file is attached. Laravel cannot read multipart PUT bodies, so updates
// with a file are sent as POST with _method=PUT.
type formBody struct {
	fields map[string]string
	file   *domain.Upload
}

func (f formBody) request(method, path, token, endpoint string) (request, error) {
	if f.file == nil {
		payload := make(map[string]string, len(f.fields))
		for k, v := range f.fields {
			payload[k] = v
		}
		return jsonRequest(method, path, token, endpoint, payload)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if method != "POST" {
		if err := w.WriteField("_method", method); err != nil {
			return request{}, err
		}
		method = "POST"
	}

	for k, v := range f.fields {
		if err := w.WriteField(k, v); err != nil {
			return request{}, err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(f.file.Field), escapeQuotes(f.file.FileName)))
	h.Set("Content-Type", f.file.ContentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return request{}, err
	}
	if _, err := part.Write(f.file.Data); err != nil {
		return request{}, err
	}
	if err := w.Close(); err != nil {
		return request{}, err
	}

	return request{
		method:      method,
		path:        path,
		token:       token,
		body:        &buf,
		contentType: w.FormDataContentType(),
		endpoint:    endpoint,
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
