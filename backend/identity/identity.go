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

// Package identity draws collision-free identities and opaque tokens.
// Every namespace is astronomically larger than its occupied set, so a
// handful of redraws is already an anomaly; the attempt ceiling exists
// to fail loudly instead of spinning when a store misbehaves.
package identity

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/fleexta/fleexta/backend/models"
	"github.com/fleexta/fleexta/backend/stats"
)

// maxAttempts bounds the redraw loop. Exceeding it yields ErrExhausted.
const maxAttempts = 32

// Allocate draws candidates from gen until taken reports one free.
// Collisions redraw after a short jittered backoff.
func Allocate[T comparable](gen func() T, taken func(T) (bool, error)) (T, error) {
	var zero T
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			stats.AllocatorRetries.Inc()
			time.Sleep(time.Duration(rand.Intn(1000)) * time.Microsecond)
		}
		candidate := gen()
		inUse, err := taken(candidate)
		if err != nil {
			return zero, fmt.Errorf("availability check: %w", err)
		}
		if !inUse {
			return candidate, nil
		}
	}
	return zero, models.ErrExhausted
}

// AccountID draws an 8-digit account identity.
func AccountID() int64 {
	return 10000000 + rand.Int63n(90000000)
}

// GroupChatID draws a 10-digit group-chat identity.
func GroupChatID() int64 {
	return 1000000000 + rand.Int63n(9000000000)
}

// ChannelID draws a channel identity: the negation of a 10-digit
// magnitude. Group chats and channels share one availability table
// because their ranges are disjoint by sign.
func ChannelID() int64 {
	return -GroupChatID()
}

// Token draws an opaque token for media blobs and invite links.
func Token() string {
	return uuid.NewString()
}
