package http

import (
	"mime/multipart"
	"net/http"

	"github.com/egannguyen/go-bookstore-backend/internal/storage"
)

// 10 MiB upload cap, matching the gateway limit in front of the service.
const maxUploadBytes = 10 << 20

func (h *Handler) uploadOne(r *http.Request, folder string, header *multipart.FileHeader) (*storage.UploadResult, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return h.uploader.Upload(r.Context(), folder, header.Filename, file, header.Size, contentType)
}

// handleUpload accepts one file under "file" or several under "files",
// routed by the "folder" form value.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}
	folder := r.FormValue("folder")

	if headers := r.MultipartForm.File["files"]; len(headers) > 0 {
		results := make([]storage.UploadResult, 0, len(headers))
		for _, header := range headers {
			result, err := h.uploadOne(r, folder, header)
			if err != nil {
				writeError(w, err)
				return
			}
			results = append(results, *result)
		}
		writeJSON(w, http.StatusOK, results)
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		badRequest(w, "missing file field")
		return
	}
	result, err := h.uploadOne(r, folder, headers[0])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
