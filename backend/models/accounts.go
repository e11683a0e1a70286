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

// Account is a registered user. IDs are 8-digit numbers drawn by the
// identity allocator. The password field holds the bcrypt hash, never
// the plain credential.
type Account struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"`
	Email          string `json:"email,omitempty"`
	ProfileID      int64  `json:"profile"`
}

// Profile holds the mutable presentation data of an account.
type Profile struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	About  string `json:"about"`
	Avatar []byte `json:"-"`
}

// AccountUpdate carries the optional fields of an account edit. Nil
// means "leave as is".
type AccountUpdate struct {
	Username *string `json:"username"`
	Name     *string `json:"name"`
	About    *string `json:"about"`
	Email    *string `json:"email"`
}
