// Package board manages the in-memory registry of whiteboards: ownership,
// membership and each board's live scene store.
package board

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/drawdeck/drawdeck/internal/auth"
	"github.com/drawdeck/drawdeck/internal/scene"
	"github.com/drawdeck/drawdeck/internal/typeid"
)

var (
	ErrNotFound  = errors.New("board not found")
	ErrForbidden = errors.New("forbidden")
	ErrNotMember = errors.New("not a board member")
)

type Board struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type boardState struct {
	info    Board
	store   *scene.Store
	members map[string]string // userID -> role ("owner" | "editor")
}

type Service struct {
	mu     sync.RWMutex
	boards map[string]*boardState
	users  *auth.Service
}

func NewService(users *auth.Service) *Service {
	return &Service{
		boards: make(map[string]*boardState),
		users:  users,
	}
}

// Create registers a new empty board owned by the given user.
func (s *Service) Create(name, ownerID string) (*Board, error) {
	b := &boardState{
		info: Board{
			ID:        typeid.NewBoardID(),
			Name:      name,
			OwnerID:   ownerID,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		store:   scene.NewStore(),
		members: map[string]string{ownerID: "owner"},
	}
	s.mu.Lock()
	s.boards[b.info.ID] = b
	s.mu.Unlock()
	return &b.info, nil
}

// List returns the boards the user is a member of, newest first.
func (s *Service) List(userID string) []Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Board
	for _, b := range s.boards {
		if _, ok := b.members[userID]; ok {
			out = append(out, b.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// Get returns the board if the user is a member.
func (s *Service) Get(boardID, userID string) (*Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[boardID]
	if !ok {
		return nil, ErrNotFound
	}
	if _, member := b.members[userID]; !member {
		return nil, ErrNotMember
	}
	info := b.info
	return &info, nil
}

// Delete removes the board. Owner only.
func (s *Service) Delete(boardID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[boardID]
	if !ok {
		return ErrNotFound
	}
	if b.info.OwnerID != userID {
		return ErrForbidden
	}
	delete(s.boards, boardID)
	return nil
}

// InviteByEmail adds a registered user to the board. Owner only.
func (s *Service) InviteByEmail(boardID, actorID, email string) error {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[boardID]
	if !ok {
		return ErrNotFound
	}
	if b.info.OwnerID != actorID {
		return ErrForbidden
	}
	if _, already := b.members[user.ID]; !already {
		b.members[user.ID] = "editor"
	}
	return nil
}

// ListMembers returns the board's members. Members only.
func (s *Service) ListMembers(boardID, userID string) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[boardID]
	if !ok {
		return nil, ErrNotFound
	}
	if _, member := b.members[userID]; !member {
		return nil, ErrNotMember
	}
	out := make([]Member, 0, len(b.members))
	for id, role := range b.members {
		m := Member{UserID: id, Role: role}
		if u, err := s.users.GetUser(id); err == nil {
			m.DisplayName = u.DisplayName
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// RemoveMember drops a member from the board. Owner only; the owner
// cannot be removed.
func (s *Service) RemoveMember(boardID, actorID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[boardID]
	if !ok {
		return ErrNotFound
	}
	if b.info.OwnerID != actorID || targetID == b.info.OwnerID {
		return ErrForbidden
	}
	delete(b.members, targetID)
	return nil
}

// IsMember reports whether the user belongs to the board.
func (s *Service) IsMember(boardID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[boardID]
	if !ok {
		return false
	}
	_, member := b.members[userID]
	return member
}

// Store returns the board's live scene store.
func (s *Service) Store(boardID string) (*scene.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[boardID]
	if !ok {
		return nil, ErrNotFound
	}
	return b.store, nil
}
