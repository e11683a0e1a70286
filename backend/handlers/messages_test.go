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
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"

	"github.com/fleexta/fleexta/backend/authz"
	"github.com/fleexta/fleexta/backend/directory"
	"github.com/fleexta/fleexta/backend/integration"
	"github.com/fleexta/fleexta/backend/live"
	"github.com/fleexta/fleexta/backend/middleware"
	"github.com/fleexta/fleexta/backend/models"
	"github.com/fleexta/fleexta/backend/storage/memory"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	store  *memory.Store
	dir    *directory.Directory
	router *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	dir := directory.New(store)
	gate := authz.New(store, dir)
	publisher := live.NewPublisher(store, 10*time.Millisecond)
	avatars := integration.NewAvatarRenderer("")

	h := &Handlers{
		Accounts:  NewAccountHandler(store, dir, avatars, testSecret, "fleexta"),
		Chats:     NewChatHandler(store, dir, gate, nil),
		Messages:  NewMessageHandler(store, gate, publisher, nil),
		Media:     NewMediaHandler(store),
		Resources: NewResourceHandler(store),
	}

	r := mux.NewRouter()
	RegisterRoutes(r, middleware.NewAuthMiddleware(testSecret, "fleexta"), h)
	return &testEnv{store: store, dir: dir, router: r}
}

// addAccount seeds an account with a fixed id and returns a bearer
// token for it.
func (e *testEnv) addAccount(t *testing.T, id int64, username string) string {
	t.Helper()

	account := &models.Account{ID: id, Username: username, HashedPassword: "x"}
	if err := e.store.CreateAccount(account, &models.Profile{Name: username}); err != nil {
		t.Fatalf("create account %s: %v", username, err)
	}
	if err := e.dir.Rebuild(); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	token, err := middleware.IssueToken(testSecret, "fleexta", account)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestFirstContactMaterializesChat(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addAccount(t, 12345678, "alice")
	env.addAccount(t, 87654321, "bob")

	w := env.do(t, "GET", "/c/87654321", alice, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("open peer: got %d, want 201 (%s)", w.Code, w.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	decodeJSON(t, w, &created)
	if created.ID == 0 {
		t.Fatal("open peer: no chat id returned")
	}

	members, err := env.store.Members(created.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	if diff := cmp.Diff([]int64{12345678, 87654321}, members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}

	// A second open lands on the same chat and reads as an empty list.
	w = env.do(t, "GET", fmt.Sprintf("/c/%d", created.ID), alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reopen: got %d, want 200", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("reopen: got body %q, want empty list", body)
	}
}

func TestSendAssignsSequentialIDs(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addAccount(t, 12345678, "alice")
	env.addAccount(t, 87654321, "bob")

	env.do(t, "GET", "/c/87654321", alice, nil)
	chats, err := env.store.MembershipsByAccount(12345678)
	if err != nil || len(chats) != 1 {
		t.Fatalf("memberships: %v %v", chats, err)
	}
	chat := chats[0]

	for want := int64(1); want <= 3; want++ {
		w := env.do(t, "POST", fmt.Sprintf("/c/%d/send", chat), alice,
			map[string]string{"message": fmt.Sprintf("hello %d", want)})
		if w.Code != http.StatusCreated {
			t.Fatalf("send %d: got %d (%s)", want, w.Code, w.Body.String())
		}
		var resp struct {
			ID int64 `json:"id"`
		}
		decodeJSON(t, w, &resp)
		if resp.ID != want {
			t.Errorf("send: got id %d, want %d", resp.ID, want)
		}
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addAccount(t, 12345678, "alice")
	env.addAccount(t, 87654321, "bob")
	env.do(t, "GET", "/c/87654321", alice, nil)
	chats, _ := env.store.MembershipsByAccount(12345678)

	w := env.do(t, "POST", fmt.Sprintf("/c/%d/send", chats[0]), alice,
		map[string]string{"message": "", "media": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty send: got %d, want 400", w.Code)
	}
}

func TestNonMemberIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addAccount(t, 12345678, "alice")
	eve := env.addAccount(t, 11112222, "eve")

	w := env.do(t, "POST", "/create", alice, map[string]string{"name": "club", "types": "chat"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d (%s)", w.Code, w.Body.String())
	}
	var chat struct {
		ID int64 `json:"id"`
	}
	decodeJSON(t, w, &chat)

	for _, path := range []string{
		fmt.Sprintf("/c/%d", chat.ID),
		fmt.Sprintf("/c/%d/stream", chat.ID),
	} {
		w := env.do(t, "GET", path, eve, nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("GET %s as non-member: got %d, want 403", path, w.Code)
		}
	}
	w = env.do(t, "POST", fmt.Sprintf("/c/%d/send", chat.ID), eve,
		map[string]string{"message": "hi"})
	if w.Code != http.StatusForbidden {
		t.Errorf("send as non-member: got %d, want 403", w.Code)
	}
}

func TestUnknownChatIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addAccount(t, 12345678, "alice")

	w := env.do(t, "GET", "/c/9999999999", alice, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown chat: got %d, want 404", w.Code)
	}
	w = env.do(t, "GET", "/c/99999999", alice, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown peer: got %d, want 404", w.Code)
	}
}

func TestOnlyAuthorMayEditOrDelete(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addAccount(t, 12345678, "alice")
	bob := env.addAccount(t, 87654321, "bob")

	env.do(t, "GET", "/c/87654321", alice, nil)
	chats, _ := env.store.MembershipsByAccount(12345678)
	chat := chats[0]

	w := env.do(t, "POST", fmt.Sprintf("/c/%d/send", chat), alice,
		map[string]string{"message": "original"})
	if w.Code != http.StatusCreated {
		t.Fatalf("send: got %d", w.Code)
	}

	w = env.do(t, "POST", fmt.Sprintf("/c/%d/1/edit", chat), bob,
		map[string]string{"message": "hijack"})
	if w.Code != http.StatusForbidden {
		t.Errorf("edit by non-author: got %d, want 403", w.Code)
	}
	w = env.do(t, "POST", fmt.Sprintf("/c/%d/1/delete", chat), bob, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("delete by non-author: got %d, want 403", w.Code)
	}

	w = env.do(t, "POST", fmt.Sprintf("/c/%d/1/edit", chat), alice,
		map[string]string{"message": "fixed"})
	if w.Code != http.StatusOK {
		t.Fatalf("edit by author: got %d (%s)", w.Code, w.Body.String())
	}
	var edited models.Message
	decodeJSON(t, w, &edited)
	if edited.Body != "fixed" {
		t.Errorf("edit: got body %q, want %q", edited.Body, "fixed")
	}

	w = env.do(t, "POST", fmt.Sprintf("/c/%d/1/delete", chat), alice, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete by author: got %d", w.Code)
	}
	w = env.do(t, "GET", fmt.Sprintf("/c/%d/1", chat), alice, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get deleted: got %d, want 404", w.Code)
	}
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, 12345678, "alice")

	for _, path := range []string{"/chats", "/me", "/c/12345678"} {
		w := env.do(t, "GET", path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: got %d, want 401", path, w.Code)
		}
	}
}
