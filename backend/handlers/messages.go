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
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fleexta/fleexta/backend/authz"
	"github.com/fleexta/fleexta/backend/live"
	"github.com/fleexta/fleexta/backend/models"
	"github.com/fleexta/fleexta/backend/stats"
	"github.com/fleexta/fleexta/backend/storage"
	redisstore "github.com/fleexta/fleexta/backend/storage/redis"
)

type MessageHandler struct {
	store  storage.Store
	gate   *authz.Authorizer
	live   *live.Publisher
	notify *redisstore.Notifier
}

func NewMessageHandler(store storage.Store, gate *authz.Authorizer, publisher *live.Publisher, notify *redisstore.Notifier) *MessageHandler {
	return &MessageHandler{store: store, gate: gate, live: publisher, notify: notify}
}

// Open resolves the chat ref and returns its message list. When the
// ref named a peer account and a DM was just materialized, the new
// chat id comes back instead of the (empty) list, matching the client
// contract.
// GET /c/{chat}
func (h *MessageHandler) Open(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}

	chatID, created, err := h.gate.Authorize(uid, pathVar(r, "chat"))
	if err != nil {
		writeError(w, err)
		return
	}
	if created {
		respondJSON(w, http.StatusCreated, map[string]int64{"id": chatID})
		return
	}

	messages, err := h.store.Messages(chatID)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	respondJSON(w, http.StatusOK, messages)
}

// Stream re-emits the chat's full message list on every tick as
// server-sent events until the client disconnects.
// GET /c/{chat}/stream
func (h *MessageHandler) Stream(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}

	chatID, _, err := h.gate.Authorize(uid, pathVar(r, "chat"))
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range h.live.Subscribe(r.Context(), chatID) {
		payload, err := json.Marshal(event.Messages)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "id: %d\nretry: %d\ndata: %s\n\n", event.ID, event.Retry, payload)
		flusher.Flush()
	}
}

// Send appends a message. Text may be absent when a media token is
// attached.
// POST /c/{chat}/send {"message": ..., "media": ...}
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
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
		Message string `json:"message"`
		Media   string `json:"media"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrInvalidRequest)
		return
	}
	if req.Message == "" && req.Media == "" {
		writeError(w, models.ErrInvalidRequest)
		return
	}

	msg := &models.Message{
		ChatID:     chatID,
		AuthorID:   uid,
		CreatedAt:  time.Now(),
		Body:       req.Message,
		MediaToken: req.Media,
	}
	id, err := h.store.AppendMessage(msg)
	if err != nil {
		writeError(w, err)
		return
	}
	stats.MessagesSent.Inc()
	if err := h.notify.MessageEvent("message", *msg); err != nil {
		log.Printf("notify message: %v", err)
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Get returns one message.
// GET /c/{chat}/{id}
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}

	chatID, _, err := h.gate.Authorize(uid, pathVar(r, "chat"))
	if err != nil {
		writeError(w, err)
		return
	}
	msgID, err := parseID(pathVar(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.store.Message(chatID, msgID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, msg)
}

// Edit replaces the text of the caller's own message.
// POST /c/{chat}/{id}/edit {"message": ...}
func (h *MessageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}

	chatID, _, err := h.gate.Authorize(uid, pathVar(r, "chat"))
	if err != nil {
		writeError(w, err)
		return
	}
	msgID, err := parseID(pathVar(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, models.ErrInvalidRequest)
		return
	}

	msg, err := h.store.Message(chatID, msgID)
	if err != nil {
		writeError(w, err)
		return
	}
	if msg.AuthorID != uid {
		writeError(w, models.ErrActionForbidden)
		return
	}

	if err := h.store.EditMessage(chatID, msgID, req.Message); err != nil {
		writeError(w, err)
		return
	}
	msg.Body = req.Message
	if err := h.notify.MessageEvent("message_edited", *msg); err != nil {
		log.Printf("notify message_edited: %v", err)
	}

	respondJSON(w, http.StatusOK, msg)
}

// Delete removes the caller's own message and echoes it back.
// POST /c/{chat}/{id}/delete
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}

	chatID, _, err := h.gate.Authorize(uid, pathVar(r, "chat"))
	if err != nil {
		writeError(w, err)
		return
	}
	msgID, err := parseID(pathVar(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.store.Message(chatID, msgID)
	if err != nil {
		writeError(w, err)
		return
	}
	if msg.AuthorID != uid {
		writeError(w, models.ErrActionForbidden)
		return
	}

	if err := h.store.DeleteMessage(chatID, msgID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.notify.MessageEvent("message_deleted", *msg); err != nil {
		log.Printf("notify message_deleted: %v", err)
	}

	respondJSON(w, http.StatusOK, msg)
}
