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

	"github.com/fleexta/fleexta/backend/models"
)

// AppendMessage draws the next identity from the chat's counter and
// inserts inside one transaction. The counter row lock serializes
// concurrent appends on the same chat, and because the counter only
// grows, a deleted identity is never handed out again.
func (s *Store) AppendMessage(msg *models.Message) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		UPDATE chats SET last_message_id = last_message_id + 1
		WHERE id = $1
		RETURNING last_message_id`, msg.ChatID).Scan(&msg.ID)
	if err == sql.ErrNoRows {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(`
		INSERT INTO messages (chat_id, id, created_at, author_id, body, media_token)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ChatID, msg.ID, msg.CreatedAt, msg.AuthorID, msg.Body, msg.MediaToken)
	if err != nil {
		return 0, err
	}

	return msg.ID, tx.Commit()
}

func (s *Store) Messages(chatID int64) ([]models.Message, error) {
	rows, err := s.db.Query(`
		SELECT chat_id, id, created_at, author_id, body, media_token
		FROM messages
		WHERE chat_id = $1
		ORDER BY id ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ChatID, &m.ID, &m.CreatedAt, &m.AuthorID, &m.Body, &m.MediaToken); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (s *Store) Message(chatID, id int64) (*models.Message, error) {
	var m models.Message
	err := s.db.QueryRow(`
		SELECT chat_id, id, created_at, author_id, body, media_token
		FROM messages
		WHERE chat_id = $1 AND id = $2`, chatID, id).
		Scan(&m.ChatID, &m.ID, &m.CreatedAt, &m.AuthorID, &m.Body, &m.MediaToken)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) EditMessage(chatID, id int64, body string) error {
	res, err := s.db.Exec(`
		UPDATE messages SET body = $1
		WHERE chat_id = $2 AND id = $3`, body, chatID, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteMessage(chatID, id int64) error {
	res, err := s.db.Exec(`
		DELETE FROM messages
		WHERE chat_id = $1 AND id = $2`, chatID, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
