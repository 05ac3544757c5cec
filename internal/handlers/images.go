package handlers

import (
	"errors"
	"io"
	"net/http"

	"roomcompare/internal/config"
	"roomcompare/internal/logger"
	"roomcompare/internal/model"
	"roomcompare/internal/service"
	"roomcompare/internal/service/session"
)

// UploadImageHandler stores the multipart field "image" in the slot named by
// the "slot" query parameter and responds with the new state.
func UploadImageHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(manager, w, r)
		if !ok {
			return
		}

		slot, err := model.ParseSlot(r.URL.Query().Get("slot"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err, nil, logger)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
		if err := r.ParseMultipartForm(cfg.MaxUploadBytes); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, errors.New("image is too large"), nil, logger)
				return
			}
			writeError(w, http.StatusBadRequest, err, nil, logger)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("image field is required"), nil, logger)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			logger.Error("Error reading upload: %v", err)
			writeError(w, http.StatusBadRequest, err, nil, logger)
			return
		}

		asset, err := session.NewAsset(header.Filename, header.Header.Get("Content-Type"), data)
		if err != nil {
			logger.Warning("Rejected upload %s: %v", header.Filename, err)
			writeError(w, http.StatusUnsupportedMediaType, err, nil, logger)
			return
		}

		if err := s.SetImage(slot, asset); err != nil {
			writeError(w, http.StatusConflict, err, nil, logger)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot(), logger)
	}
}

// ViewImageHandler serves the image stored in the slot named by the "slot" query parameter.
func ViewImageHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(manager, w, r)
		if !ok {
			return
		}

		slot, err := model.ParseSlot(r.URL.Query().Get("slot"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		asset, ok := s.Image(slot)
		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", asset.ContentType)
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(asset.Data); err != nil {
			logger.Warning("Error writing image: %v", err)
		}
	}
}
