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

// Package authz gates every chat-scoped operation on membership and
// materializes direct-message chats on first contact.
package authz

import (
	"errors"
	"strconv"

	"github.com/fleexta/fleexta/backend/directory"
	"github.com/fleexta/fleexta/backend/models"
	"github.com/fleexta/fleexta/backend/storage"
)

// accountIDDigits is the width of the account namespace. A chat ref of
// this width that resolves to no chat is treated as a peer account.
const accountIDDigits = 8

type Authorizer struct {
	store storage.Store
	dir   *directory.Directory
}

func New(store storage.Store, dir *directory.Directory) *Authorizer {
	return &Authorizer{store: store, dir: dir}
}

// Authorize resolves chatRef on behalf of accountID. When chatRef names
// an existing chat, membership is required. When it is 8 digits wide
// and names an account instead, the direct-message chat between the two
// accounts is returned, created first if this is their first contact.
// created reports the lazy-creation case. No mutation happens on any
// failing path.
func (a *Authorizer) Authorize(accountID int64, chatRef string) (chatID int64, created bool, err error) {
	ref, parseErr := strconv.ParseInt(chatRef, 10, 64)
	if parseErr != nil {
		return 0, false, models.ErrNotFound
	}

	chat, err := a.store.ChatByID(ref)
	if err == nil {
		member, err := a.store.IsMember(chat.ID, accountID)
		if err != nil {
			return 0, false, err
		}
		if !member {
			return 0, false, models.ErrForbidden
		}
		return chat.ID, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return 0, false, err
	}

	if len(chatRef) != accountIDDigits {
		return 0, false, models.ErrNotFound
	}
	return a.materializeDM(accountID, ref)
}

// materializeDM returns the direct-message chat between the caller and
// peer, creating it on first contact. The chat is pinned in the DM-pair
// relation so a later first contact from the peer's side lands on the
// same chat instead of spawning a duplicate.
func (a *Authorizer) materializeDM(accountID, peerID int64) (int64, bool, error) {
	caller, err := a.store.AccountByID(accountID)
	if err != nil {
		return 0, false, err
	}
	peer, err := a.store.AccountByID(peerID)
	if err != nil {
		return 0, false, err
	}

	lo, hi := accountID, peerID
	if lo > hi {
		lo, hi = hi, lo
	}

	if chatID, err := a.store.DMPair(lo, hi); err == nil {
		return chatID, false, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return 0, false, err
	}

	name := caller.Username + " , " + peer.Username
	chatID, err := a.dir.CreateChat(name, models.KindGroupChat, accountID)
	if err != nil {
		return 0, false, err
	}
	if err := a.dir.AddMember(chatID, peer.ID); err != nil {
		return 0, false, err
	}
	if err := a.store.SaveDMPair(lo, hi, chatID); err != nil {
		return 0, false, err
	}

	return chatID, true, nil
}
