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
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/fleexta/fleexta/backend/authz"
	"github.com/fleexta/fleexta/backend/directory"
	"github.com/fleexta/fleexta/backend/identity"
	"github.com/fleexta/fleexta/backend/models"
	"github.com/fleexta/fleexta/backend/storage"
	redisstore "github.com/fleexta/fleexta/backend/storage/redis"
)

type ChatHandler struct {
	store  storage.Store
	dir    *directory.Directory
	gate   *authz.Authorizer
	notify *redisstore.Notifier
}

func NewChatHandler(store storage.Store, dir *directory.Directory, gate *authz.Authorizer, notify *redisstore.Notifier) *ChatHandler {
	return &ChatHandler{store: store, dir: dir, gate: gate, notify: notify}
}

// MyChats returns the caller's name→chatId listing from the snapshot.
// GET /chats
func (h *ChatHandler) MyChats(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}
	view, ok := h.dir.Account(uid)
	if !ok {
		writeError(w, models.ErrNotFound)
		return
	}
	respondJSON(w, http.StatusOK, view.Chats)
}

// Create makes a new group chat or channel with the caller as sole
// member.
// POST /create {"name": ..., "types": "chat"|"channel"}
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name  string `json:"name"`
		Types string `json:"types"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, models.ErrInvalidRequest)
		return
	}

	chatID, err := h.dir.CreateChat(req.Name, models.Kind(req.Types), uid)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":   chatID,
		"name": req.Name,
	})
}

// Rename changes the chat's display name. Member-gated; listings pick
// the new name up on the rebuild.
// POST /c/{chat}/rename {"name": ...}
func (h *ChatHandler) Rename(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}
	chatID, _, err := h.gate.Authorize(uid, pathVar(r, "chat"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, models.ErrInvalidRequest)
		return
	}

	if err := h.store.RenameChat(chatID, req.Name); err != nil {
		writeError(w, err)
		return
	}
	if err := h.dir.Rebuild(); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"id": chatID, "name": req.Name})
}

// SetAvatar stores the chat's avatar image.
// POST /c/{chat}/avatar (raw image bytes)
func (h *ChatHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}
	chatID, _, err := h.gate.Authorize(uid, pathVar(r, "chat"))
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		writeError(w, models.ErrInvalidRequest)
		return
	}

	if err := h.store.SetChatAvatar(chatID, data); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"avatar": "ok"})
}

// GenerateInvite allocates a fresh token for the chat, invalidating
// any prior one. Member-gated.
// POST /invite {"kind": "chat"|"channel", "id": chatId}
func (h *ChatHandler) GenerateInvite(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}

	var req struct {
		Kind string `json:"kind"`
		ID   int64  `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrInvalidRequest)
		return
	}
	kind := models.Kind(req.Kind)
	if !kind.Valid() {
		writeError(w, models.ErrInvalidRequest)
		return
	}

	chat, err := h.store.ChatByID(req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if chat.Kind != kind {
		writeError(w, models.ErrInvalidRequest)
		return
	}
	member, err := h.store.IsMember(chat.ID, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	if !member {
		writeError(w, models.ErrForbidden)
		return
	}

	token, err := identity.Allocate(identity.Token, h.store.InviteTokenTaken)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.SaveInvite(token, kind, chat.ID); err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"invite": token})
}

// RedeemInvite resolves a root-level invite link and joins the caller.
// Tokens stay live across redemptions until regenerated.
// GET /{token}
func (h *ChatHandler) RedeemInvite(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}

	invite, err := h.store.ResolveInvite(pathVar(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.dir.AddMember(invite.ChatID, uid); err != nil {
		writeError(w, err)
		return
	}
	if err := h.notify.MemberAdded(invite.ChatID, uid); err != nil {
		log.Printf("notify member_added: %v", err)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"joined": invite.ChatID,
		"kind":   invite.Kind,
	})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, models.ErrNotFound
	}
	return id, nil
}
