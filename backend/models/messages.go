// Copyright (C) 2025 fleexta.app <dev@fleexta.app>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package models

import "time"

// Message is one entry of a chat's append-only log. IDs are unique and
// gapless within their chat only, starting at 1. Body may be empty when
// a media token is present.
type Message struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"time"`
	AuthorID   int64     `json:"author"`
	Body       string    `json:"message"`
	MediaToken string    `json:"media,omitempty"`
	ChatID     int64     `json:"chat"`
}

// Media is one uploaded blob. Write-once; two uploads of identical
// bytes get distinct tokens.
type Media struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Value []byte `json:"-"`
}

// UpdateEvent is one tick of a live-update subscription. The payload is
// always the chat's full ordered message list; consumers must tolerate
// event-to-event duplication.
type UpdateEvent struct {
	ID       int64     `json:"id"`
	Retry    int64     `json:"retry"` // suggested reconnect delay, milliseconds
	Messages []Message `json:"messages"`
}
