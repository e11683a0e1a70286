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

package postgres

import (
	"database/sql"
	"time"

	"github.com/fleexta/fleexta/backend/models"
)

func (s *Store) CreateChat(chat *models.Chat, creatorID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO chats (id, kind, name, created_at)
		VALUES ($1, $2, $3, $4)`,
		chat.ID, chat.Kind, chat.Name, chat.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO chat_members (chat_id, account_id, joined_at)
		VALUES ($1, $2, $3)`,
		chat.ID, creatorID, time.Now())
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) ChatByID(id int64) (*models.Chat, error) {
	var c models.Chat
	var avatar []byte
	var invite sql.NullString
	err := s.db.QueryRow(`
		SELECT id, kind, name, created_at, avatar, invite_token
		FROM chats WHERE id = $1`, id).
		Scan(&c.ID, &c.Kind, &c.Name, &c.CreatedAt, &avatar, &invite)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Avatar = avatar
	c.InviteToken = invite.String
	return &c, nil
}

func (s *Store) ChatIDTaken(id int64) (bool, error) {
	var taken bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM chats WHERE id = $1)`, id).Scan(&taken)
	return taken, err
}

func (s *Store) AddMember(chatID, accountID int64) error {
	_, err := s.db.Exec(`
		INSERT INTO chat_members (chat_id, account_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, account_id) DO NOTHING`,
		chatID, accountID, time.Now())
	return err
}

func (s *Store) Members(chatID int64) ([]int64, error) {
	rows, err := s.db.Query(`
		SELECT account_id FROM chat_members
		WHERE chat_id = $1`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var accountID int64
		if err := rows.Scan(&accountID); err != nil {
			return nil, err
		}
		members = append(members, accountID)
	}

	return members, rows.Err()
}

func (s *Store) IsMember(chatID, accountID int64) (bool, error) {
	var member bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM chat_members
			WHERE chat_id = $1 AND account_id = $2)`,
		chatID, accountID).Scan(&member)
	return member, err
}

func (s *Store) MembershipsByAccount(accountID int64) ([]int64, error) {
	rows, err := s.db.Query(`
		SELECT chat_id FROM chat_members
		WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []int64
	for rows.Next() {
		var chatID int64
		if err := rows.Scan(&chatID); err != nil {
			return nil, err
		}
		chats = append(chats, chatID)
	}

	return chats, rows.Err()
}

func (s *Store) RenameChat(chatID int64, name string) error {
	res, err := s.db.Exec(`
		UPDATE chats SET name = $1 WHERE id = $2`, name, chatID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) SetChatAvatar(chatID int64, avatar []byte) error {
	res, err := s.db.Exec(`
		UPDATE chats SET avatar = $1 WHERE id = $2`, avatar, chatID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DMPair(lo, hi int64) (int64, error) {
	var chatID int64
	err := s.db.QueryRow(`
		SELECT chat_id FROM dm_pairs
		WHERE account_lo = $1 AND account_hi = $2`, lo, hi).Scan(&chatID)
	if err == sql.ErrNoRows {
		return 0, models.ErrNotFound
	}
	return chatID, err
}

func (s *Store) SaveDMPair(lo, hi, chatID int64) error {
	_, err := s.db.Exec(`
		INSERT INTO dm_pairs (account_lo, account_hi, chat_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_lo, account_hi) DO NOTHING`,
		lo, hi, chatID)
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
