package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorestore/internal/apperr"
	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/photo"
)

type UploadHandler struct {
	uploader photo.Uploader
	logger   *slog.Logger
}

func NewUploadHandler(u photo.Uploader, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploader: u, logger: logger}
}

// Photo accepts a multipart "photo" field and returns the stored URL, which
// the child then sends as photo_url on submission.
func (h *UploadHandler) Photo(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeError(w, h.logger, apperr.BadRequest("Photo uploads are not enabled"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, photo.MaxSize+(1<<16))
	file, _, err := r.FormFile("photo")
	if err != nil {
		writeError(w, h.logger, apperr.BadRequest("A photo file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, photo.MaxSize+1))
	if err != nil {
		writeError(w, h.logger, apperr.BadRequest("Could not read photo"))
		return
	}
	contentType, err := photo.Sniff(data)
	if err != nil {
		switch {
		case errors.Is(err, photo.ErrTooLarge), errors.Is(err, photo.ErrUnsupportedType), errors.Is(err, photo.ErrEmpty):
			writeError(w, h.logger, apperr.BadRequest("%s", err.Error()))
		default:
			writeError(w, h.logger, err)
		}
		return
	}

	url, err := h.uploader.Upload(r.Context(), auth.HouseholdID(r.Context()), contentType, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
