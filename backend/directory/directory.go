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

// Package directory owns chat records and the account snapshot that
// answers "my chats" on every authenticated request. The snapshot is
// rebuilt wholesale after any membership-changing operation and swapped
// atomically; readers always see a complete structure, current or
// one rebuild stale.
package directory

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fleexta/fleexta/backend/identity"
	"github.com/fleexta/fleexta/backend/models"
	"github.com/fleexta/fleexta/backend/storage"
)

// AccountView is one account's entry in the snapshot. Chat display
// names are derived from the chat records at rebuild time, never stored
// on the account.
type AccountView struct {
	ID        int64            `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email,omitempty"`
	ProfileID int64            `json:"profile"`
	Chats     map[string]int64 `json:"chats"`
}

type snapshot struct {
	accounts map[int64]AccountView
}

type Directory struct {
	store storage.Store
	snap  atomic.Pointer[snapshot]
}

func New(store storage.Store) *Directory {
	d := &Directory{store: store}
	d.snap.Store(&snapshot{accounts: map[int64]AccountView{}})
	return d
}

// Rebuild replaces the whole snapshot from the store. Concurrent
// rebuilds are harmless: the later swap wins and both are complete.
func (d *Directory) Rebuild() error {
	accounts, err := d.store.AllAccounts()
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}

	next := &snapshot{accounts: make(map[int64]AccountView, len(accounts))}
	for _, a := range accounts {
		view := AccountView{
			ID:        a.ID,
			Username:  a.Username,
			Email:     a.Email,
			ProfileID: a.ProfileID,
			Chats:     map[string]int64{},
		}
		chatIDs, err := d.store.MembershipsByAccount(a.ID)
		if err != nil {
			return fmt.Errorf("rebuild memberships of %d: %w", a.ID, err)
		}
		for _, chatID := range chatIDs {
			chat, err := d.store.ChatByID(chatID)
			if err != nil {
				return fmt.Errorf("rebuild chat %d: %w", chatID, err)
			}
			view.Chats[chat.Name] = chat.ID
		}
		next.accounts[a.ID] = view
	}

	d.snap.Store(next)
	return nil
}

// Account reads one view from the current snapshot.
func (d *Directory) Account(id int64) (AccountView, bool) {
	view, ok := d.snap.Load().accounts[id]
	return view, ok
}

// CreateChat allocates an identity in the kind's namespace partition,
// stores the chat with the creator as sole member and rebuilds the
// snapshot.
func (d *Directory) CreateChat(name string, kind models.Kind, creatorID int64) (int64, error) {
	var gen func() int64
	switch kind {
	case models.KindGroupChat:
		gen = identity.GroupChatID
	case models.KindChannel:
		gen = identity.ChannelID
	default:
		return 0, models.ErrInvalidRequest
	}

	id, err := identity.Allocate(gen, d.store.ChatIDTaken)
	if err != nil {
		return 0, err
	}

	chat := &models.Chat{
		ID:        id,
		Kind:      kind,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := d.store.CreateChat(chat, creatorID); err != nil {
		return 0, err
	}

	if err := d.Rebuild(); err != nil {
		return 0, err
	}
	return id, nil
}

// AddMember adds the account to the chat (idempotent) and rebuilds.
func (d *Directory) AddMember(chatID, accountID int64) error {
	if err := d.store.AddMember(chatID, accountID); err != nil {
		return err
	}
	return d.Rebuild()
}
