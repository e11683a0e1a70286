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

	"github.com/lib/pq"

	"github.com/fleexta/fleexta/backend/models"
)

// usernameConflict translates the UNIQUE violation on accounts.username
// into the domain error. Uniqueness is pre-checked at the handler, but
// two concurrent writers can both pass that check.
func usernameConflict(err error) error {
	if pqErr, ok := err.(*pq.Error); ok &&
		pqErr.Code == "23505" && pqErr.Constraint == "accounts_username_key" {
		return models.ErrUsernameTaken
	}
	return err
}

func (s *Store) CreateAccount(account *models.Account, profile *models.Profile) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO profiles (name, about, avatar)
		VALUES ($1, $2, $3)
		RETURNING id`,
		profile.Name, profile.About, profile.Avatar).Scan(&profile.ID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO accounts (id, username, hashed_password, email, profile_id)
		VALUES ($1, $2, $3, $4, $5)`,
		account.ID, account.Username, account.HashedPassword, account.Email, profile.ID)
	if err != nil {
		return usernameConflict(err)
	}
	account.ProfileID = profile.ID

	return tx.Commit()
}

func (s *Store) AccountByID(id int64) (*models.Account, error) {
	return s.scanAccount(s.db.QueryRow(`
		SELECT id, username, hashed_password, email, profile_id
		FROM accounts WHERE id = $1`, id))
}

func (s *Store) AccountByUsername(username string) (*models.Account, error) {
	return s.scanAccount(s.db.QueryRow(`
		SELECT id, username, hashed_password, email, profile_id
		FROM accounts WHERE username = $1`, username))
}

func (s *Store) scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Username, &a.HashedPassword, &a.Email, &a.ProfileID)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) AccountIDTaken(id int64) (bool, error) {
	var taken bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&taken)
	return taken, err
}

func (s *Store) AllAccounts() ([]models.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, username, hashed_password, email, profile_id
		FROM accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Username, &a.HashedPassword, &a.Email, &a.ProfileID); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

func (s *Store) UpdateAccount(id int64, upd models.AccountUpdate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if upd.Username != nil {
		if _, err := tx.Exec(`
			UPDATE accounts SET username = $1 WHERE id = $2`,
			*upd.Username, id); err != nil {
			return usernameConflict(err)
		}
	}
	if upd.Email != nil {
		if _, err := tx.Exec(`
			UPDATE accounts SET email = $1 WHERE id = $2`,
			*upd.Email, id); err != nil {
			return err
		}
	}
	if upd.Name != nil {
		if _, err := tx.Exec(`
			UPDATE profiles SET name = $1
			WHERE id = (SELECT profile_id FROM accounts WHERE id = $2)`,
			*upd.Name, id); err != nil {
			return err
		}
	}
	if upd.About != nil {
		if _, err := tx.Exec(`
			UPDATE profiles SET about = $1
			WHERE id = (SELECT profile_id FROM accounts WHERE id = $2)`,
			*upd.About, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) Profile(id int64) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(`
		SELECT id, name, about, avatar
		FROM profiles WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.About, &p.Avatar)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
