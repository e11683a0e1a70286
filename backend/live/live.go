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

// Package live re-emits a chat's full message list to each subscriber
// on a fixed tick. There is no differencing: payload size grows with
// chat history and consecutive events usually repeat each other, which
// consumers must tolerate. Each subscriber gets its own loop; loops
// share nothing, and sends never block, so a stalled subscriber misses
// ticks without holding anything back.
package live

import (
	"context"
	"time"

	"github.com/fleexta/fleexta/backend/models"
	"github.com/fleexta/fleexta/backend/stats"
	"github.com/fleexta/fleexta/backend/storage"
)

// DefaultTick matches the freshness goal of roughly one second.
const DefaultTick = time.Second

type Publisher struct {
	log  storage.MessageStore
	tick time.Duration
}

func NewPublisher(log storage.MessageStore, tick time.Duration) *Publisher {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Publisher{log: log, tick: tick}
}

// Tick returns the loop interval, which doubles as the retry hint.
func (p *Publisher) Tick() time.Duration {
	return p.tick
}

// Subscribe starts one loop for this subscriber. The channel closes
// once cancellation is observed; cancellation is checked at the top of
// every tick, so teardown lags by at most one interval. The stream is
// infinite until cancelled and is not restartable.
func (p *Publisher) Subscribe(ctx context.Context, chatID int64) <-chan models.UpdateEvent {
	events := make(chan models.UpdateEvent, 1)

	go func() {
		defer close(events)
		stats.LiveSubscribers.Inc()
		defer stats.LiveSubscribers.Dec()

		ticker := time.NewTicker(p.tick)
		defer ticker.Stop()

		retry := p.tick.Milliseconds()
		var eventID int64

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			// The tick and cancellation may race; cancellation wins.
			select {
			case <-ctx.Done():
				return
			default:
			}

			messages, err := p.log.Messages(chatID)
			if err != nil {
				// Transient store fault: skip this tick, keep the loop.
				continue
			}

			select {
			case events <- models.UpdateEvent{ID: eventID + 1, Retry: retry, Messages: messages}:
				eventID++
			default:
				// Subscriber has not drained the previous event;
				// this tick is dropped, not queued.
			}
		}
	}()

	return events
}
