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

package models

import "time"

// Kind tags a chat as a multi-member group chat or a broadcast channel.
// The wire values match the client API ("chat" and "channel").
type Kind string

const (
	KindGroupChat Kind = "chat"
	KindChannel   Kind = "channel"
)

// Valid reports whether k is one of the two recognized kinds.
func (k Kind) Valid() bool {
	return k == KindGroupChat || k == KindChannel
}

// Chat is a group chat or channel. Group chats carry a positive 10-digit
// identity; channels carry the negation of an allocated 10-digit
// magnitude, so both kinds share one availability table. The kind is
// still stored explicitly: nothing may branch on the sign to learn it.
type Chat struct {
	ID          int64     `json:"id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"time"`
	Avatar      []byte    `json:"-"`
	InviteToken string    `json:"-"`
}

// Invite resolves an opaque token to a chat. Tokens are reusable until
// the chat regenerates them; regeneration invalidates the old token.
type Invite struct {
	Token  string `json:"token"`
	Kind   Kind   `json:"kind"`
	ChatID int64  `json:"chat"`
}
