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

// Package memory is an in-process storage.Store used by tests and by
// STORE=memory development runs. One mutex covers the whole store, so
// the reciprocal chat/member maps can never be observed half-updated
// and per-chat message counters behave as single-writer sequences.
package memory

import (
	"sort"
	"sync"

	"github.com/fleexta/fleexta/backend/models"
)

type pair struct{ lo, hi int64 }

type Store struct {
	mu sync.RWMutex

	accounts  map[int64]models.Account
	usernames map[string]int64
	profiles  map[int64]models.Profile
	profileID int64

	chats        map[int64]models.Chat
	members      map[int64]map[int64]bool
	accountChats map[int64]map[int64]bool
	dmPairs      map[pair]int64

	messages  map[int64]map[int64]models.Message
	nextMsgID map[int64]int64

	media   map[string]models.Media
	invites map[string]models.Invite
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[int64]models.Account),
		usernames:    make(map[string]int64),
		profiles:     make(map[int64]models.Profile),
		chats:        make(map[int64]models.Chat),
		members:      make(map[int64]map[int64]bool),
		accountChats: make(map[int64]map[int64]bool),
		dmPairs:      make(map[pair]int64),
		messages:     make(map[int64]map[int64]models.Message),
		nextMsgID:    make(map[int64]int64),
		media:        make(map[string]models.Media),
		invites:      make(map[string]models.Invite),
	}
}

func (s *Store) CreateAccount(account *models.Account, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usernames[account.Username]; exists {
		return models.ErrUsernameTaken
	}

	s.profileID++
	profile.ID = s.profileID
	account.ProfileID = profile.ID

	s.profiles[profile.ID] = *profile
	s.accounts[account.ID] = *account
	s.usernames[account.Username] = account.ID
	return nil
}

func (s *Store) AccountByID(id int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (s *Store) AccountByUsername(username string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	a := s.accounts[id]
	return &a, nil
}

func (s *Store) AccountIDTaken(id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, taken := s.accounts[id]
	return taken, nil
}

func (s *Store) AllAccounts() ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (s *Store) UpdateAccount(id int64, upd models.AccountUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return models.ErrNotFound
	}
	p := s.profiles[a.ProfileID]

	if upd.Username != nil {
		if owner, taken := s.usernames[*upd.Username]; taken && owner != id {
			return models.ErrUsernameTaken
		}
		delete(s.usernames, a.Username)
		a.Username = *upd.Username
		s.usernames[a.Username] = id
	}
	if upd.Email != nil {
		a.Email = *upd.Email
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.About != nil {
		p.About = *upd.About
	}

	s.accounts[id] = a
	s.profiles[p.ID] = p
	return nil
}

func (s *Store) Profile(id int64) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *Store) CreateChat(chat *models.Chat, creatorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats[chat.ID] = *chat
	s.members[chat.ID] = map[int64]bool{creatorID: true}
	s.addAccountChat(creatorID, chat.ID)
	return nil
}

// addAccountChat keeps the reciprocal listing in step with members.
// Callers hold the write lock.
func (s *Store) addAccountChat(accountID, chatID int64) {
	if s.accountChats[accountID] == nil {
		s.accountChats[accountID] = make(map[int64]bool)
	}
	s.accountChats[accountID][chatID] = true
}

func (s *Store) ChatByID(id int64) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ChatIDTaken(id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, taken := s.chats[id]
	return taken, nil
}

func (s *Store) AddMember(chatID, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; !ok {
		return models.ErrNotFound
	}
	s.members[chatID][accountID] = true
	s.addAccountChat(accountID, chatID)
	return nil
}

func (s *Store) Members(chatID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.members[chatID]
	if !ok {
		return nil, models.ErrNotFound
	}
	members := make([]int64, 0, len(set))
	for id := range set {
		members = append(members, id)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return members, nil
}

func (s *Store) IsMember(chatID, accountID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.members[chatID][accountID], nil
}

func (s *Store) MembershipsByAccount(accountID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chats []int64
	for chatID := range s.accountChats[accountID] {
		chats = append(chats, chatID)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i] < chats[j] })
	return chats, nil
}

func (s *Store) RenameChat(chatID int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return models.ErrNotFound
	}
	c.Name = name
	s.chats[chatID] = c
	return nil
}

func (s *Store) SetChatAvatar(chatID int64, avatar []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return models.ErrNotFound
	}
	c.Avatar = avatar
	s.chats[chatID] = c
	return nil
}

func (s *Store) DMPair(lo, hi int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chatID, ok := s.dmPairs[pair{lo, hi}]
	if !ok {
		return 0, models.ErrNotFound
	}
	return chatID, nil
}

func (s *Store) SaveDMPair(lo, hi, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.dmPairs[pair{lo, hi}]; !exists {
		s.dmPairs[pair{lo, hi}] = chatID
	}
	return nil
}

func (s *Store) AppendMessage(msg *models.Message) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[msg.ChatID]; !ok {
		return 0, models.ErrNotFound
	}

	s.nextMsgID[msg.ChatID]++
	msg.ID = s.nextMsgID[msg.ChatID]
	if s.messages[msg.ChatID] == nil {
		s.messages[msg.ChatID] = make(map[int64]models.Message)
	}
	s.messages[msg.ChatID][msg.ID] = *msg
	return msg.ID, nil
}

func (s *Store) Messages(chatID int64) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var messages []models.Message
	for _, m := range s.messages[chatID] {
		messages = append(messages, m)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages, nil
}

func (s *Store) Message(chatID, id int64) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[chatID][id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &m, nil
}

func (s *Store) EditMessage(chatID, id int64, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[chatID][id]
	if !ok {
		return models.ErrNotFound
	}
	m.Body = body
	s.messages[chatID][id] = m
	return nil
}

func (s *Store) DeleteMessage(chatID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[chatID][id]; !ok {
		return models.ErrNotFound
	}
	delete(s.messages[chatID], id)
	return nil
}

func (s *Store) SaveMedia(token, name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob := make([]byte, len(value))
	copy(blob, value)
	s.media[token] = models.Media{Token: token, Name: name, Value: blob}
	return nil
}

func (s *Store) MediaTokenTaken(token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, taken := s.media[token]
	return taken, nil
}

func (s *Store) MediaMeta(token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.media[token]
	if !ok {
		return "", models.ErrNotFound
	}
	return m.Name, nil
}

func (s *Store) MediaBlob(token string) (*models.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.media[token]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &m, nil
}

func (s *Store) SaveInvite(token string, kind models.Kind, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return models.ErrNotFound
	}
	if c.InviteToken != "" {
		delete(s.invites, c.InviteToken)
	}
	c.InviteToken = token
	s.chats[chatID] = c
	s.invites[token] = models.Invite{Token: token, Kind: kind, ChatID: chatID}
	return nil
}

func (s *Store) ResolveInvite(token string) (*models.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invites[token]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &inv, nil
}

func (s *Store) InviteTokenTaken(token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, taken := s.invites[token]
	return taken, nil
}

func (s *Store) InviteForChat(chatID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[chatID]
	if !ok || c.InviteToken == "" {
		return "", models.ErrNotFound
	}
	return c.InviteToken, nil
}
