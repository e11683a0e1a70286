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

package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/fleexta/fleexta/backend/authz"
	"github.com/fleexta/fleexta/backend/config"
	"github.com/fleexta/fleexta/backend/directory"
	"github.com/fleexta/fleexta/backend/handlers"
	"github.com/fleexta/fleexta/backend/integration"
	"github.com/fleexta/fleexta/backend/live"
	"github.com/fleexta/fleexta/backend/middleware"
	"github.com/fleexta/fleexta/backend/storage"
	"github.com/fleexta/fleexta/backend/storage/memory"
	"github.com/fleexta/fleexta/backend/storage/postgres"
	redisstore "github.com/fleexta/fleexta/backend/storage/redis"
)

func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	var (
		store storage.Store
		ping  func() error
	)
	switch cfg.Store {
	case "memory":
		// In-process store for development and testing. Nothing
		// survives a restart.
		store = memory.NewStore()
		ping = func() error { return nil }
	default:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		pg := postgres.NewStore(db)
		if err := pg.Migrate(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		store = pg
		ping = db.Ping
	}

	// Redis is a best-effort notification bus; without REDIS_URL the
	// notifier becomes a no-op.
	var notify *redisstore.Notifier
	if cfg.RedisURL != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		notify = redisstore.NewNotifier(rdb)
	}

	dir := directory.New(store)
	if err := dir.Rebuild(); err != nil {
		log.Fatalf("Failed to build chat directory: %v", err)
	}
	gate := authz.New(store, dir)
	publisher := live.NewPublisher(store, cfg.Tick)
	avatars := integration.NewAvatarRenderer(cfg.AvatarServiceURL)

	secret := []byte(cfg.JWTSecret)
	h := &handlers.Handlers{
		Accounts:  handlers.NewAccountHandler(store, dir, avatars, secret, cfg.JWTIssuer),
		Chats:     handlers.NewChatHandler(store, dir, gate, notify),
		Messages:  handlers.NewMessageHandler(store, gate, publisher, notify),
		Media:     handlers.NewMediaHandler(store),
		Resources: handlers.NewResourceHandler(store),
	}

	r := mux.NewRouter()
	handlers.RegisterRoutes(r, middleware.NewAuthMiddleware(secret, cfg.JWTIssuer), h)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		if err := ping(); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
