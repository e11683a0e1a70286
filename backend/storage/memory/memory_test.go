// Copyright (C) 2025 fleexta.app <dev@fleexta.app>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package memory

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/fleexta/fleexta/backend/models"
)

func newChat(t *testing.T, s *Store, id, creator int64) {
	t.Helper()
	chat := &models.Chat{ID: id, Kind: models.KindGroupChat, Name: "room", CreatedAt: time.Now()}
	if err := s.CreateChat(chat, creator); err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
}

func TestMessageIdentitiesGapless(t *testing.T) {
	s := NewStore()
	newChat(t, s, 1000000001, 12345678)

	for want := int64(1); want <= 5; want++ {
		id, err := s.AppendMessage(&models.Message{ChatID: 1000000001, AuthorID: 12345678, Body: "m"})
		if err != nil {
			t.Fatalf("append %d: %v", want, err)
		}
		if id != want {
			t.Fatalf("expected identity %d, got %d", want, id)
		}
	}

	msgs, err := s.Messages(1000000001)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	for i, m := range msgs {
		if m.ID != int64(i)+1 {
			t.Errorf("position %d holds identity %d", i, m.ID)
		}
	}
}

func TestConcurrentAppendsKeepSequence(t *testing.T) {
	s := NewStore()
	newChat(t, s, 1000000002, 12345678)

	const senders = 20
	var wg sync.WaitGroup
	wg.Add(senders)
	for i := 0; i < senders; i++ {
		go func(n int) {
			defer wg.Done()
			s.AppendMessage(&models.Message{ChatID: 1000000002, AuthorID: 12345678, Body: fmt.Sprint(n)})
		}(i)
	}
	wg.Wait()

	msgs, _ := s.Messages(1000000002)
	if len(msgs) != senders {
		t.Fatalf("expected %d messages, got %d (lost under concurrency)", senders, len(msgs))
	}
	seen := make(map[int64]bool)
	for _, m := range msgs {
		if seen[m.ID] {
			t.Fatalf("duplicate identity %d", m.ID)
		}
		seen[m.ID] = true
	}
	for id := int64(1); id <= senders; id++ {
		if !seen[id] {
			t.Fatalf("gap: identity %d missing", id)
		}
	}
}

func TestDeletedIdentityNotReused(t *testing.T) {
	s := NewStore()
	newChat(t, s, 1000000006, 12345678)

	for i := 0; i < 3; i++ {
		if _, err := s.AppendMessage(&models.Message{ChatID: 1000000006, AuthorID: 12345678, Body: "m"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := s.DeleteMessage(1000000006, 3); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}

	// Deleting the highest message must not hand its identity back out.
	id, err := s.AppendMessage(&models.Message{ChatID: 1000000006, AuthorID: 12345678, Body: "m"})
	if err != nil {
		t.Fatalf("append after delete: %v", err)
	}
	if id != 4 {
		t.Errorf("append after deleting the top message got identity %d, want 4", id)
	}
}

func TestUsernameUpdateRejectsCollision(t *testing.T) {
	s := NewStore()
	if err := s.CreateAccount(&models.Account{ID: 12345678, Username: "alice"}, &models.Profile{}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := s.CreateAccount(&models.Account{ID: 87654321, Username: "bob"}, &models.Profile{}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	taken := "alice"
	if err := s.UpdateAccount(87654321, models.AccountUpdate{Username: &taken}); err != models.ErrUsernameTaken {
		t.Errorf("renaming onto a held username: got %v, want ErrUsernameTaken", err)
	}

	// Renaming to your own current username stays legal.
	same := "bob"
	if err := s.UpdateAccount(87654321, models.AccountUpdate{Username: &same}); err != nil {
		t.Errorf("renaming onto own username: %v", err)
	}
}

func TestAddMemberDedupes(t *testing.T) {
	s := NewStore()
	newChat(t, s, 1000000003, 11111111)

	for i := 0; i < 3; i++ {
		if err := s.AddMember(1000000003, 22222222); err != nil {
			t.Fatalf("AddMember: %v", err)
		}
	}

	members, err := s.Members(1000000003)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if diff := cmp.Diff([]int64{11111111, 22222222}, members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestMembershipReciprocal(t *testing.T) {
	s := NewStore()
	newChat(t, s, 1000000004, 11111111)
	if err := s.AddMember(1000000004, 22222222); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	for _, account := range []int64{11111111, 22222222} {
		chats, err := s.MembershipsByAccount(account)
		if err != nil {
			t.Fatalf("MembershipsByAccount(%d): %v", account, err)
		}
		if diff := cmp.Diff([]int64{1000000004}, chats); diff != "" {
			t.Errorf("account %d listing mismatch (-want +got):\n%s", account, diff)
		}
	}
}

func TestMediaRoundTrip(t *testing.T) {
	s := NewStore()
	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0x01}

	if err := s.SaveMedia("tok-1", "cat.png", payload); err != nil {
		t.Fatalf("SaveMedia: %v", err)
	}

	m, err := s.MediaBlob("tok-1")
	if err != nil {
		t.Fatalf("MediaBlob: %v", err)
	}
	if m.Name != "cat.png" {
		t.Errorf("name = %q, want cat.png", m.Name)
	}
	if diff := cmp.Diff(payload, m.Value); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.MediaBlob("no-such-token"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown token: expected ErrNotFound, got %v", err)
	}
}

func TestInviteRegenerationInvalidatesPrior(t *testing.T) {
	s := NewStore()
	newChat(t, s, 1000000005, 11111111)

	if err := s.SaveInvite("tok-a", models.KindGroupChat, 1000000005); err != nil {
		t.Fatalf("SaveInvite: %v", err)
	}
	if err := s.SaveInvite("tok-b", models.KindGroupChat, 1000000005); err != nil {
		t.Fatalf("SaveInvite (regenerate): %v", err)
	}

	if _, err := s.ResolveInvite("tok-a"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("stale token still resolves: %v", err)
	}

	// The live token stays redeemable any number of times.
	for i := 0; i < 2; i++ {
		inv, err := s.ResolveInvite("tok-b")
		if err != nil {
			t.Fatalf("ResolveInvite #%d: %v", i+1, err)
		}
		if inv.ChatID != 1000000005 {
			t.Errorf("resolved to chat %d", inv.ChatID)
		}
	}
}
