package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "pulsechat/internal/pkg/messaging/domain"
	port "pulsechat/internal/pkg/messaging/store/port"
)

// MemoryStore is an in-memory Store used for local development and tests.
// Message IDs come from a per-store counter, preserving the monotonic
// ordering guarantee of the Postgres identity column.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]domain.Conversation
	participants  map[string]map[string]domain.Participant // conversationID -> userID
	messages      map[string][]domain.Message              // conversationID, ascending ID order
	nextMessageID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]domain.Conversation),
		participants:  make(map[string]map[string]domain.Participant),
		messages:      make(map[string][]domain.Message),
	}
}

var _ port.Store = (*MemoryStore)(nil)

func (s *MemoryStore) CreateConversation(_ context.Context, c domain.Conversation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt
	c.LastMessageAt = c.CreatedAt
	s.conversations[c.ID] = c
	return c.ID, nil
}

func (s *MemoryStore) AddParticipant(_ context.Context, p domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.participants[p.ConversationID]
	if members == nil {
		members = make(map[string]domain.Participant)
		s.participants[p.ConversationID] = members
	}
	if _, exists := members[p.UserID]; exists {
		return nil
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	members[p.UserID] = p
	return nil
}

func (s *MemoryStore) GetConversation(_ context.Context, conversationID string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListConversationsByIDs(_ context.Context, ids []string) ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var convs []domain.Conversation
	for _, id := range ids {
		if c, ok := s.conversations[id]; ok {
			convs = append(convs, c)
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastMessageAt.After(convs[j].LastMessageAt)
	})
	return convs, nil
}

func (s *MemoryStore) GetParticipant(_ context.Context, conversationID, userID string) (*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[conversationID][userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.participants[conversationID][userID]
	return ok, nil
}

func (s *MemoryStore) ListParticipants(_ context.Context, conversationID string) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.participants[conversationID]
	parts := make([]domain.Participant, 0, len(members))
	for _, p := range members {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].UserID < parts[j].UserID })
	return parts, nil
}

func (s *MemoryStore) ListUserParticipants(_ context.Context, userID string) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var parts []domain.Participant
	for _, members := range s.participants {
		if p, ok := members[userID]; ok {
			parts = append(parts, p)
		}
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].JoinedAt.After(parts[j].JoinedAt) })
	return parts, nil
}

func (s *MemoryStore) SaveMessage(_ context.Context, m domain.Message) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[m.ConversationID]; !ok {
		return nil, domain.ErrNotFound
	}
	s.nextMessageID++
	m.ID = s.nextMessageID
	m.CreatedAt = time.Now().UTC()
	s.messages[m.ConversationID] = append(s.messages[m.ConversationID], m)
	return &m, nil
}

func (s *MemoryStore) MessagesBefore(_ context.Context, conversationID string, beforeID int64, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	log := s.messages[conversationID]
	var msgs []domain.Message
	// log is ascending by ID; walk backwards for descending pages
	for i := len(log) - 1; i >= 0 && len(msgs) < limit; i-- {
		if beforeID > 0 && log[i].ID >= beforeID {
			continue
		}
		msgs = append(msgs, log[i])
	}
	return msgs, nil
}

func (s *MemoryStore) UpdateConversationSummary(_ context.Context, conversationID string, m domain.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if c.LastMessageID >= m.ID {
		return false, nil
	}
	s.conversations[conversationID] = c.ApplySummary(m)
	return true, nil
}

func (s *MemoryStore) AdvanceReadCursor(_ context.Context, conversationID, userID string, messageID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.participants[conversationID]
	p, ok := members[userID]
	if !ok {
		return false, nil
	}
	if p.HasReadUpTo(messageID) {
		return false, nil
	}
	p.LastReadMessageID = &messageID
	members[userID] = p
	return true, nil
}
