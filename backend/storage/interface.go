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

package storage

import (
	"github.com/fleexta/fleexta/backend/models"
)

// Stores translate a missing row to models.ErrNotFound; callers never
// see driver-level errors for absent entities.

type AccountStore interface {
	// CreateAccount persists the account and its profile in one
	// transactional scope. The profile ID is assigned by the store and
	// written back to both records.
	CreateAccount(account *models.Account, profile *models.Profile) error
	AccountByID(id int64) (*models.Account, error)
	AccountByUsername(username string) (*models.Account, error)
	AccountIDTaken(id int64) (bool, error)
	AllAccounts() ([]models.Account, error)
	UpdateAccount(id int64, upd models.AccountUpdate) error
	Profile(id int64) (*models.Profile, error)
}

type ChatStore interface {
	// CreateChat stores the chat with the creator as its sole member.
	CreateChat(chat *models.Chat, creatorID int64) error
	ChatByID(id int64) (*models.Chat, error)
	ChatIDTaken(id int64) (bool, error)
	// AddMember is idempotent: adding an existing member is a no-op.
	AddMember(chatID, accountID int64) error
	Members(chatID int64) ([]int64, error)
	IsMember(chatID, accountID int64) (bool, error)
	MembershipsByAccount(accountID int64) ([]int64, error)
	RenameChat(chatID int64, name string) error
	SetChatAvatar(chatID int64, avatar []byte) error

	// DM pairs pin the lazily materialized chat between two accounts so
	// first contact from either side lands on the same chat. lo < hi.
	DMPair(lo, hi int64) (int64, error)
	SaveDMPair(lo, hi, chatID int64) error
}

type MessageStore interface {
	// AppendMessage assigns the next identity within the chat (gapless,
	// starting at 1) and persists the message. Assignment and insert
	// happen as one atomic step. Assignment is monotonic: deleting a
	// message, even the highest, never frees its identity for reuse.
	AppendMessage(msg *models.Message) (int64, error)
	Messages(chatID int64) ([]models.Message, error)
	Message(chatID, id int64) (*models.Message, error)
	// EditMessage and DeleteMessage mutate unconditionally; authorship
	// is enforced one layer up.
	EditMessage(chatID, id int64, body string) error
	DeleteMessage(chatID, id int64) error
}

type MediaStore interface {
	SaveMedia(token, name string, value []byte) error
	MediaTokenTaken(token string) (bool, error)
	MediaMeta(token string) (string, error)
	MediaBlob(token string) (*models.Media, error)
}

type InviteStore interface {
	// SaveInvite records a fresh token for the chat and invalidates the
	// chat's previous token, if any.
	SaveInvite(token string, kind models.Kind, chatID int64) error
	ResolveInvite(token string) (*models.Invite, error)
	InviteTokenTaken(token string) (bool, error)
	InviteForChat(chatID int64) (string, error)
}

type Store interface {
	AccountStore
	ChatStore
	MessageStore
	MediaStore
	InviteStore
}
