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

package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func createChat(t *testing.T, env *testEnv, token, name string) int64 {
	t.Helper()
	w := env.do(t, "POST", "/create", token, map[string]string{"name": name, "types": "chat"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create chat: got %d (%s)", w.Code, w.Body.String())
	}
	var chat struct {
		ID int64 `json:"id"`
	}
	decodeJSON(t, w, &chat)
	return chat.ID
}

func issueInvite(t *testing.T, env *testEnv, token string, chatID int64) string {
	t.Helper()
	w := env.do(t, "POST", "/invite", token, map[string]interface{}{"kind": "chat", "id": chatID})
	if w.Code != http.StatusCreated {
		t.Fatalf("issue invite: got %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Invite string `json:"invite"`
	}
	decodeJSON(t, w, &resp)
	if resp.Invite == "" {
		t.Fatal("issue invite: empty token")
	}
	return resp.Invite
}

func TestInviteRedeemableByMultipleAccounts(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addAccount(t, 12345678, "alice")
	bob := env.addAccount(t, 87654321, "bob")
	carol := env.addAccount(t, 11112222, "carol")

	chat := createChat(t, env, alice, "club")
	invite := issueInvite(t, env, alice, chat)

	// The same link joins both accounts; redemption does not consume
	// the token.
	for _, session := range []string{bob, carol} {
		w := env.do(t, "GET", "/"+invite, session, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("redeem: got %d (%s)", w.Code, w.Body.String())
		}
		var resp struct {
			Joined int64  `json:"joined"`
			Kind   string `json:"kind"`
		}
		decodeJSON(t, w, &resp)
		if resp.Joined != chat {
			t.Errorf("redeem joined chat %d, want %d", resp.Joined, chat)
		}
		if resp.Kind != "chat" {
			t.Errorf("redeem reported kind %q, want %q", resp.Kind, "chat")
		}
	}

	members, err := env.store.Members(chat)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	if diff := cmp.Diff([]int64{11112222, 12345678, 87654321}, members); diff != "" {
		t.Errorf("members after two redemptions (-want +got):\n%s", diff)
	}

	// Still live: a fresh member can read it back.
	w := env.do(t, "GET", fmt.Sprintf("/get/chat/invite/%d", chat), bob, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("read invite: got %d", w.Code)
	}
	var current struct {
		Invite string `json:"invite"`
	}
	decodeJSON(t, w, &current)
	if current.Invite != invite {
		t.Errorf("invite after redemptions = %q, want the original %q", current.Invite, invite)
	}
}

func TestRegeneratedInviteKillsOldToken(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addAccount(t, 12345678, "alice")
	bob := env.addAccount(t, 87654321, "bob")

	chat := createChat(t, env, alice, "club")
	old := issueInvite(t, env, alice, chat)
	fresh := issueInvite(t, env, alice, chat)

	w := env.do(t, "GET", "/"+old, bob, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("redeem stale token: got %d, want 404", w.Code)
	}
	w = env.do(t, "GET", "/"+fresh, bob, nil)
	if w.Code != http.StatusOK {
		t.Errorf("redeem fresh token: got %d (%s)", w.Code, w.Body.String())
	}
}

func TestInviteRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addAccount(t, 12345678, "alice")
	eve := env.addAccount(t, 11112222, "eve")

	chat := createChat(t, env, alice, "club")

	w := env.do(t, "POST", "/invite", eve, map[string]interface{}{"kind": "chat", "id": chat})
	if w.Code != http.StatusForbidden {
		t.Errorf("invite by non-member: got %d, want 403", w.Code)
	}

	w = env.do(t, "POST", "/invite", alice, map[string]interface{}{"kind": "channel", "id": chat})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invite with mismatched kind: got %d, want 400", w.Code)
	}
}
