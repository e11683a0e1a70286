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
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleexta/fleexta/backend/middleware"
	"github.com/fleexta/fleexta/backend/models"
)

// Handlers bundles the request surface for route registration.
type Handlers struct {
	Accounts  *AccountHandler
	Chats     *ChatHandler
	Messages  *MessageHandler
	Media     *MediaHandler
	Resources *ResourceHandler
}

// RegisterRoutes wires every endpoint onto the router. auth wraps the
// handlers that require a session.
func RegisterRoutes(r *mux.Router, auth func(http.Handler) http.Handler, h *Handlers) {
	r.Use(middleware.CORS)

	r.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"ping": "pong"})
	}).Methods("GET")

	r.HandleFunc("/reg", h.Accounts.Register).Methods("POST")
	r.HandleFunc("/token", h.Accounts.Login).Methods("POST")
	r.Handle("/me", auth(http.HandlerFunc(h.Accounts.Me))).Methods("GET")
	r.Handle("/search/{username}", auth(http.HandlerFunc(h.Accounts.Search))).Methods("GET")
	r.Handle("/account/edit", auth(http.HandlerFunc(h.Accounts.Edit))).Methods("POST")

	r.Handle("/chats", auth(http.HandlerFunc(h.Chats.MyChats))).Methods("GET")
	r.Handle("/create", auth(http.HandlerFunc(h.Chats.Create))).Methods("POST")
	r.Handle("/invite", auth(http.HandlerFunc(h.Chats.GenerateInvite))).Methods("POST")

	r.Handle("/c/{chat}", auth(http.HandlerFunc(h.Messages.Open))).Methods("GET")
	r.Handle("/c/{chat}/stream", auth(http.HandlerFunc(h.Messages.Stream))).Methods("GET")
	r.Handle("/c/{chat}/send", auth(http.HandlerFunc(h.Messages.Send))).Methods("POST")
	r.Handle("/c/{chat}/rename", auth(http.HandlerFunc(h.Chats.Rename))).Methods("POST")
	r.Handle("/c/{chat}/avatar", auth(http.HandlerFunc(h.Chats.SetAvatar))).Methods("POST")
	r.Handle("/c/{chat}/{id:[0-9]+}", auth(http.HandlerFunc(h.Messages.Get))).Methods("GET")
	r.Handle("/c/{chat}/{id:[0-9]+}/edit", auth(http.HandlerFunc(h.Messages.Edit))).Methods("POST")
	r.Handle("/c/{chat}/{id:[0-9]+}/delete", auth(http.HandlerFunc(h.Messages.Delete))).Methods("POST")

	r.Handle("/upload/media", auth(http.HandlerFunc(h.Media.Upload))).Methods("POST")
	r.HandleFunc("/media/{token}/meta", h.Media.Meta).Methods("GET")
	r.HandleFunc("/media/{token}", h.Media.Download).Methods("GET")

	// Member and invite listings leak membership, so they sit behind
	// auth; the rest of the resource tree is public like the media
	// endpoints. Specific routes first: mux matches in order.
	r.Handle("/get/chat/members/{id}", auth(http.HandlerFunc(h.Resources.ChatMembers))).Methods("GET")
	r.Handle("/get/chat/invite/{id}", auth(http.HandlerFunc(h.Resources.ChatInvite))).Methods("GET")
	r.HandleFunc("/get/{root}/{field}/{id}", h.Resources.Get).Methods("GET")

	// Invite links live at the site root.
	r.Handle("/{token:[0-9a-fA-F-]{36}}", auth(http.HandlerFunc(h.Chats.RedeemInvite))).Methods("GET")
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden), errors.Is(err, models.ErrActionForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrInvalidRequest), errors.Is(err, models.ErrUsernameTaken):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, models.ErrExhausted):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.AccountID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}
