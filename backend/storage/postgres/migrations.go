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

func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			about TEXT NOT NULL DEFAULT '',
			avatar BYTEA
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			profile_id BIGINT NOT NULL REFERENCES profiles(id)
		)`,

		// Group chats are positive, channels negative: one table backs
		// both identity namespaces. last_message_id only grows, so
		// message identities are never reissued after a delete.
		`CREATE TABLE IF NOT EXISTS chats (
			id BIGINT PRIMARY KEY,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			avatar BYTEA,
			invite_token TEXT,
			last_message_id BIGINT NOT NULL DEFAULT 0
		)`,

		`ALTER TABLE chats
			ADD COLUMN IF NOT EXISTS last_message_id BIGINT NOT NULL DEFAULT 0`,

		`CREATE TABLE IF NOT EXISTS chat_members (
			chat_id BIGINT NOT NULL REFERENCES chats(id),
			account_id BIGINT NOT NULL REFERENCES accounts(id),
			joined_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (chat_id, account_id)
		)`,

		`CREATE INDEX IF NOT EXISTS chat_members_account_idx
			ON chat_members (account_id)`,

		`CREATE TABLE IF NOT EXISTS dm_pairs (
			account_lo BIGINT NOT NULL,
			account_hi BIGINT NOT NULL,
			chat_id BIGINT NOT NULL REFERENCES chats(id),
			PRIMARY KEY (account_lo, account_hi)
		)`,

		// Message identities are scoped per chat and assigned from
		// chats.last_message_id (see AppendMessage).
		`CREATE TABLE IF NOT EXISTS messages (
			chat_id BIGINT NOT NULL REFERENCES chats(id),
			id BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			author_id BIGINT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			media_token TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (chat_id, id)
		)`,

		`CREATE TABLE IF NOT EXISTS media (
			token TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			value BYTEA NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS invites (
			token TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			chat_id BIGINT NOT NULL REFERENCES chats(id)
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
