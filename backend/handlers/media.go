// Copyright (C) 2025 fleexta.app <dev@fleexta.app>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/fleexta/fleexta/backend/identity"
	"github.com/fleexta/fleexta/backend/models"
	"github.com/fleexta/fleexta/backend/storage"
)

// Uploads above this size are rejected before the blob is read.
const maxUploadBytes = 32 << 20

type MediaHandler struct {
	store storage.Store
}

func NewMediaHandler(store storage.Store) *MediaHandler {
	return &MediaHandler{store: store}
}

// Upload stores a multipart file blob and hands back the token used to
// reference it from messages.
// POST /upload/media
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := accountID(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, models.ErrInvalidRequest)
		return
	}
	defer file.Close()

	value, err := io.ReadAll(file)
	if err != nil {
		writeError(w, models.ErrInvalidRequest)
		return
	}

	token, err := identity.Allocate(identity.Token, h.store.MediaTokenTaken)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.SaveMedia(token, header.Filename, value); err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"upload": token})
}

// Meta returns the stored filename for a token without the blob.
// GET /media/{token}/meta
func (h *MediaHandler) Meta(w http.ResponseWriter, r *http.Request) {
	name, err := h.store.MediaMeta(pathVar(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"name": name})
}

// Download streams the blob back with the original filename.
// GET /media/{token}
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	media, err := h.store.MediaBlob(pathVar(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(media.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", media.Name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(media.Value)))
	w.WriteHeader(http.StatusOK)
	w.Write(media.Value)
}
