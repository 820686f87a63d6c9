package handler

import (
	"errors"
	"io"
	"net/http"

	"menuely/internal/model"

	"github.com/shopspring/decimal"
)

// maxUploadBytes bounds a multipart request body.
const maxUploadBytes = 10 << 20

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return model.NewValidationError("invalid multipart form: %v", err)
	}
	return nil
}

// formImage reads the image part of a parsed multipart form. It returns nil
// when no file was sent.
func formImage(r *http.Request, field string) (*model.ImageFile, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewValidationError("invalid %s part", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, model.NewValidationError("failed to read %s", field)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	return &model.ImageFile{
		Name:     header.Filename,
		MimeType: mimeType,
		Data:     data,
	}, nil
}

// formString returns a pointer to the field value, or nil when the field is absent.
func formString(r *http.Request, field string) *string {
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func formID(r *http.Request, field string) (int64, error) {
	raw := ""
	if v := formString(r, field); v != nil {
		raw = *v
	}
	return parseID(field, raw)
}

func formDecimal(r *http.Request, field string) (*decimal.Decimal, error) {
	raw := formString(r, field)
	if raw == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, model.NewValidationError("invalid %s format", field)
	}
	return &d, nil
}
