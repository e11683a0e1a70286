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
	"net/http"

	"github.com/fleexta/fleexta/backend/models"
	"github.com/fleexta/fleexta/backend/storage"
)

// ResourceHandler serves the public profile and chat attribute tree
// under /get, plus the member and invite listings that require a
// session.
type ResourceHandler struct {
	store storage.Store
}

func NewResourceHandler(store storage.Store) *ResourceHandler {
	return &ResourceHandler{store: store}
}

// Get resolves /get/{root}/{field}/{id}. Roots are "user" and "chat";
// anything else, and any field outside the known set, is an invalid
// request rather than a 404 so clients can tell a bad path from a
// missing entity.
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(pathVar(r, "id"))
	if err != nil {
		writeError(w, models.ErrInvalidRequest)
		return
	}

	switch pathVar(r, "root") {
	case "user":
		h.userField(w, pathVar(r, "field"), id)
	case "chat":
		h.chatField(w, pathVar(r, "field"), id)
	default:
		writeError(w, models.ErrInvalidRequest)
	}
}

func (h *ResourceHandler) userField(w http.ResponseWriter, field string, id int64) {
	account, err := h.store.AccountByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	profile, err := h.store.Profile(account.ProfileID)
	if err != nil {
		writeError(w, err)
		return
	}

	switch field {
	case "avatar":
		writeImage(w, profile.Avatar)
	case "name":
		respondJSON(w, http.StatusOK, map[string]string{"name": profile.Name})
	case "about":
		respondJSON(w, http.StatusOK, map[string]string{"about": profile.About})
	default:
		writeError(w, models.ErrInvalidRequest)
	}
}

func (h *ResourceHandler) chatField(w http.ResponseWriter, field string, id int64) {
	chat, err := h.store.ChatByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	switch field {
	case "avatar":
		writeImage(w, chat.Avatar)
	case "name":
		respondJSON(w, http.StatusOK, map[string]string{"name": chat.Name})
	default:
		writeError(w, models.ErrInvalidRequest)
	}
}

// ChatMembers lists the member account ids of a chat the caller
// belongs to.
// GET /get/chat/members/{id}
func (h *ResourceHandler) ChatMembers(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}
	chatID, err := parseID(pathVar(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	member, err := h.store.IsMember(chatID, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	if !member {
		writeError(w, models.ErrForbidden)
		return
	}

	members, err := h.store.Members(chatID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]int64{"members": members})
}

// ChatInvite returns the chat's current invite token. Membership is
// required; a chat without a token yet reads as not found.
// GET /get/chat/invite/{id}
func (h *ResourceHandler) ChatInvite(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}
	chatID, err := parseID(pathVar(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	member, err := h.store.IsMember(chatID, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	if !member {
		writeError(w, models.ErrForbidden)
		return
	}

	token, err := h.store.InviteForChat(chatID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"invite": token})
}

func writeImage(w http.ResponseWriter, blob []byte) {
	if len(blob) == 0 {
		writeError(w, models.ErrNotFound)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(blob))
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
}
