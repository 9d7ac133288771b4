package ui

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"contractbot/domain/dataset"
	"contractbot/internal/errors"
)

const (
	multipartMemory = 32 << 20
	actionExecute   = "execute"

	// request bodies are capped at this many maximum-size files plus formOverhead
	maxFilesPerRequest = 20
	formOverhead       = 1 << 20
)

// FormSnapshot is the full page input submitted with one render
type FormSnapshot struct {
	APIKey   string
	Question string
	Action   string
	Uploads  []dataset.Upload
}

// Execute reports whether the trigger was pressed
func (f FormSnapshot) Execute() bool {
	return f.Action == actionExecute
}

// requestBodyLimit is the largest request body accepted for a per-file limit
// of maxUploadBytes. Zero means unlimited.
func requestBodyLimit(maxUploadBytes int64) int64 {
	if maxUploadBytes <= 0 {
		return 0
	}
	return maxUploadBytes*maxFilesPerRequest + formOverhead
}

// limitBody caps the request body before any form parsing happens
func limitBody(w http.ResponseWriter, r *http.Request, maxUploadBytes int64) {
	if limit := requestBodyLimit(maxUploadBytes); limit > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
}

// snapshotFromRequest reads the multipart (or urlencoded) page form. Files
// over maxUploadBytes are rejected before their content is read.
func snapshotFromRequest(r *http.Request, maxUploadBytes int64) (FormSnapshot, error) {
	var snap FormSnapshot

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return snap, errors.InvalidInput(fmt.Sprintf("malformed upload: %v", err))
		}
	} else if err := r.ParseForm(); err != nil {
		return snap, errors.InvalidInput(fmt.Sprintf("malformed form: %v", err))
	}

	snap.APIKey = r.PostFormValue("api_key")
	snap.Question = r.PostFormValue("question")
	snap.Action = r.PostFormValue("action")

	if r.MultipartForm == nil {
		return snap, nil
	}

	headers := append(r.MultipartForm.File["files[]"], r.MultipartForm.File["files"]...)
	for _, fh := range headers {
		// browsers send an empty part when nothing was picked
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		if maxUploadBytes > 0 && fh.Size > maxUploadBytes {
			return snap, errors.InvalidInput(fmt.Sprintf("%s is %d bytes, the limit is %d", fh.Filename, fh.Size, maxUploadBytes))
		}
		upload, err := readUpload(fh)
		if err != nil {
			return snap, errors.InvalidInput(fmt.Sprintf("failed to read %s: %v", fh.Filename, err))
		}
		snap.Uploads = append(snap.Uploads, upload)
	}

	return snap, nil
}

func readUpload(fh *multipart.FileHeader) (dataset.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return dataset.Upload{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return dataset.Upload{}, err
	}
	return dataset.Upload{Filename: fh.Filename, Content: content}, nil
}
