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

	"golang.org/x/crypto/bcrypt"

	"github.com/fleexta/fleexta/backend/directory"
	"github.com/fleexta/fleexta/backend/identity"
	"github.com/fleexta/fleexta/backend/integration"
	"github.com/fleexta/fleexta/backend/middleware"
	"github.com/fleexta/fleexta/backend/models"
	"github.com/fleexta/fleexta/backend/storage"
)

type AccountHandler struct {
	store     storage.Store
	dir       *directory.Directory
	avatars   *integration.AvatarRenderer
	jwtSecret []byte
	jwtIssuer string
}

func NewAccountHandler(store storage.Store, dir *directory.Directory, avatars *integration.AvatarRenderer, jwtSecret []byte, jwtIssuer string) *AccountHandler {
	return &AccountHandler{
		store:     store,
		dir:       dir,
		avatars:   avatars,
		jwtSecret: jwtSecret,
		jwtIssuer: jwtIssuer,
	}
}

// Register creates an account with an allocated 8-digit identity, a
// profile carrying the generated avatar, and a bcrypt credential hash.
// POST /reg (form fields username, password)
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, models.ErrInvalidRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, models.ErrInvalidRequest)
		return
	}

	if _, err := h.store.AccountByUsername(username); err == nil {
		writeError(w, models.ErrUsernameTaken)
		return
	} else if !errors.Is(err, models.ErrNotFound) {
		writeError(w, err)
		return
	}

	id, err := identity.Allocate(identity.AccountID, h.store.AccountIDTaken)
	if err != nil {
		writeError(w, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}

	account := &models.Account{
		ID:             id,
		Username:       username,
		HashedPassword: string(hashed),
	}
	profile := &models.Profile{
		Name:   username,
		Avatar: h.avatars.Render(username),
	}
	if err := h.store.CreateAccount(account, profile); err != nil {
		writeError(w, err)
		return
	}

	if err := h.dir.Rebuild(); err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"registration": "ok",
		"login":        username,
	})
}

// Login verifies credentials and issues a session token.
// POST /token (form fields username, password)
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, models.ErrInvalidRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	account, err := h.store.AccountByUsername(username)
	if err != nil {
		writeError(w, models.ErrUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(account.HashedPassword), []byte(password)) != nil {
		writeError(w, models.ErrUnauthorized)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, h.jwtIssuer, account)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"id":           account.ID,
	})
}

// Me returns the caller's directory view.
// GET /me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}
	view, ok := h.dir.Account(uid)
	if !ok {
		writeError(w, models.ErrNotFound)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Search looks an account up by username.
// GET /search/{username}
func (h *AccountHandler) Search(w http.ResponseWriter, r *http.Request) {
	account, err := h.store.AccountByUsername(pathVar(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":       account.ID,
		"username": account.Username,
	})
}

// Edit applies optional account/profile updates.
// POST /account/edit
func (h *AccountHandler) Edit(w http.ResponseWriter, r *http.Request) {
	uid, ok := accountID(w, r)
	if !ok {
		return
	}

	var upd models.AccountUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, models.ErrInvalidRequest)
		return
	}

	if upd.Username != nil {
		existing, err := h.store.AccountByUsername(*upd.Username)
		if err == nil && existing.ID != uid {
			writeError(w, models.ErrUsernameTaken)
			return
		} else if err != nil && !errors.Is(err, models.ErrNotFound) {
			writeError(w, err)
			return
		}
	}

	if err := h.store.UpdateAccount(uid, upd); err != nil {
		writeError(w, err)
		return
	}
	if err := h.dir.Rebuild(); err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"edit": "ok"})
}
