// Copyright (C) 2025 fleexta.app <dev@fleexta.app>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package redis publishes chat activity on pub/sub channels for
// external push consumers (mobile push bridges, presence services).
// The in-process live-update loop does not depend on it; a nil
// Notifier is valid and drops everything.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fleexta/fleexta/backend/models"
)

const chatNotifyPrefix = "chat:notify:" // chat:notify:{chatId}

type Notifier struct {
	rdb *redis.Client
	ctx context.Context
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{
		rdb: rdb,
		ctx: context.Background(),
	}
}

// MessageEvent announces an append, edit or delete on a chat's channel.
// Failures are returned but callers treat the bus as best-effort.
func (n *Notifier) MessageEvent(event string, msg models.Message) error {
	if n == nil || n.rdb == nil {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":    event,
		"chat":    msg.ChatID,
		"message": msg.ID,
		"author":  msg.AuthorID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := fmt.Sprintf("%s%d", chatNotifyPrefix, msg.ChatID)
	return n.rdb.Publish(n.ctx, channel, payload).Err()
}

// MemberAdded announces a membership change (join, invite redemption,
// DM materialization).
func (n *Notifier) MemberAdded(chatID, accountID int64) error {
	if n == nil || n.rdb == nil {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":    "member_added",
		"chat":    chatID,
		"account": accountID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := fmt.Sprintf("%s%d", chatNotifyPrefix, chatID)
	return n.rdb.Publish(n.ctx, channel, payload).Err()
}
