package validators

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/schemas"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// multipartMemory is how much of a multipart body is buffered in memory before spilling to disk.
const multipartMemory = 2 << 20

// ParseForm reads a urlencoded or multipart form into untyped schema input.
// Only the first value of a repeated field is kept.
func ParseForm(r *http.Request) (schemas.Input, error) {
	in := schemas.Input{Values: map[string]string{}, Files: map[string]*schemas.File{}}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return in, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large")
		}
		return in, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}

	for key, values := range r.PostForm {
		if len(values) > 0 {
			in.Values[key] = values[0]
		}
	}
	if r.MultipartForm != nil {
		for key, headers := range r.MultipartForm.File {
			if len(headers) > 0 {
				in.Files[key] = fileFromHeader(headers[0])
			}
		}
	}
	return in, nil
}

func fileFromHeader(fh *multipart.FileHeader) *schemas.File {
	return &schemas.File{
		Name:        strings.TrimSpace(fh.Filename),
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}
