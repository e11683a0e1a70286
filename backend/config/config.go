// Copyright (C) 2025 fleexta.app <dev@fleexta.app>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	JWTIssuer        string
	Port             string
	Store            string // "postgres" or "memory"
	Tick             time.Duration
	AvatarServiceURL string
}

func Load() *Config {
	return &Config{
		DatabaseURL:      getenv("DATABASE_URL", "postgres://localhost/fleexta?sslmode=disable"),
		RedisURL:         os.Getenv("REDIS_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTIssuer:        getenv("JWT_ISSUER", "fleexta"),
		Port:             getenv("PORT", "8001"),
		Store:            getenv("STORE", "postgres"),
		Tick:             tickMillis(getenv("TICK_MS", "1000")),
		AvatarServiceURL: os.Getenv("AVATAR_SERVICE_URL"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func tickMillis(raw string) time.Duration {
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		ms = 1000
	}
	return time.Duration(ms) * time.Millisecond
}
