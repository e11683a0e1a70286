// Copyright (C) 2025 fleexta.app <dev@fleexta.app>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package stats holds the process-wide prometheus collectors.
package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleexta_messages_sent_total",
		Help: "Messages appended to chat logs.",
	})

	AllocatorRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleexta_identity_retries_total",
		Help: "Identity allocator redraws after a collision.",
	})

	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fleexta_live_subscribers",
		Help: "Currently running live-update subscription loops.",
	})
)
