// Copyright (C) 2025 fleexta.app <dev@fleexta.app>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package identity

import (
	"errors"
	"testing"

	"github.com/fleexta/fleexta/backend/models"
)

func TestAllocateUnique(t *testing.T) {
	seen := make(map[int64]bool)
	taken := func(id int64) (bool, error) { return seen[id], nil }

	for i := 0; i < 1000; i++ {
		id, err := Allocate(AccountID, taken)
		if err != nil {
			t.Fatalf("allocation %d failed: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("allocation %d returned live identity %d", i, id)
		}
		if id < 10000000 || id > 99999999 {
			t.Fatalf("account identity %d outside the 8-digit range", id)
		}
		seen[id] = true
	}
}

func TestAllocateRetriesCollisions(t *testing.T) {
	calls := 0
	// First three candidates collide, fourth is free.
	taken := func(id int64) (bool, error) {
		calls++
		return calls < 4, nil
	}

	id, err := Allocate(GroupChatID, taken)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if calls != 4 {
		t.Errorf("expected 4 availability checks, got %d", calls)
	}
	if id < 1000000000 || id > 9999999999 {
		t.Errorf("chat identity %d outside the 10-digit range", id)
	}
}

func TestAllocateExhausted(t *testing.T) {
	calls := 0
	taken := func(string) (bool, error) {
		calls++
		return true, nil
	}

	_, err := Allocate(Token, taken)
	if !errors.Is(err, models.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if calls != maxAttempts {
		t.Errorf("expected %d attempts before giving up, got %d", maxAttempts, calls)
	}
}

func TestAllocatePropagatesStoreErrors(t *testing.T) {
	boom := errors.New("store down")
	_, err := Allocate(AccountID, func(int64) (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestChannelIDNegative(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := ChannelID()
		if id > -1000000000 || id < -9999999999 {
			t.Fatalf("channel identity %d outside the negated 10-digit range", id)
		}
	}
}
