package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/mkarpinski/blog-api/internal/apperror"
	"github.com/mkarpinski/blog-api/internal/storage"
)

// formImage extracts an uploaded file from a multipart request. The body is
// capped a little above the storage ceiling so an oversize upload fails
// fast here instead of streaming 10 MB into the store first.
func formImage(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+64*1024)

	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, apperror.UploadRejected("file exceeds the upload size limit")
		}
		return nil, nil, apperror.ValidationFailed(field, "invalid multipart body")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, apperror.ValidationFailed(field, field+" file is required")
	}
	return file, header, nil
}
