// Copyright (C) 2025 fleexta.app <dev@fleexta.app>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package postgres

import (
	"database/sql"

	"github.com/fleexta/fleexta/backend/models"
)

func (s *Store) SaveMedia(token, name string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO media (token, name, value)
		VALUES ($1, $2, $3)`, token, name, value)
	return err
}

func (s *Store) MediaTokenTaken(token string) (bool, error) {
	var taken bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM media WHERE token = $1)`, token).Scan(&taken)
	return taken, err
}

func (s *Store) MediaMeta(token string) (string, error) {
	var name string
	err := s.db.QueryRow(`
		SELECT name FROM media WHERE token = $1`, token).Scan(&name)
	if err == sql.ErrNoRows {
		return "", models.ErrNotFound
	}
	return name, err
}

func (s *Store) MediaBlob(token string) (*models.Media, error) {
	m := models.Media{Token: token}
	err := s.db.QueryRow(`
		SELECT name, value FROM media WHERE token = $1`, token).
		Scan(&m.Name, &m.Value)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveInvite swaps the chat's live token inside one transaction: the
// previous token row is removed, so it stops resolving the moment the
// new one exists.
func (s *Store) SaveInvite(token string, kind models.Kind, chatID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var prior sql.NullString
	err = tx.QueryRow(`
		SELECT invite_token FROM chats WHERE id = $1`, chatID).Scan(&prior)
	if err == sql.ErrNoRows {
		return models.ErrNotFound
	}
	if err != nil {
		return err
	}

	if prior.Valid {
		if _, err := tx.Exec(`
			DELETE FROM invites WHERE token = $1`, prior.String); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`
		INSERT INTO invites (token, kind, chat_id)
		VALUES ($1, $2, $3)`, token, kind, chatID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE chats SET invite_token = $1 WHERE id = $2`, token, chatID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) ResolveInvite(token string) (*models.Invite, error) {
	inv := models.Invite{Token: token}
	err := s.db.QueryRow(`
		SELECT kind, chat_id FROM invites WHERE token = $1`, token).
		Scan(&inv.Kind, &inv.ChatID)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Store) InviteTokenTaken(token string) (bool, error) {
	var taken bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM invites WHERE token = $1)`, token).Scan(&taken)
	return taken, err
}

func (s *Store) InviteForChat(chatID int64) (string, error) {
	var token sql.NullString
	err := s.db.QueryRow(`
		SELECT invite_token FROM chats WHERE id = $1`, chatID).Scan(&token)
	if err == sql.ErrNoRows {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", models.ErrNotFound
	}
	return token.String, nil
}
