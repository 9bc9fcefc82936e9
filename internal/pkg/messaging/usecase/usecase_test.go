package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	domain "pulsechat/internal/pkg/messaging/domain"
	storeAdapter "pulsechat/internal/pkg/messaging/store/adapter"
)

type stubFollows struct {
	mutual bool
	err    error
	calls  int
}

func (s *stubFollows) IsMutualFollow(_ context.Context, _, _ string) (bool, error) {
	s.calls++
	return s.mutual, s.err
}

type captureNotifier struct {
	convs []domain.Conversation
	msgs  []domain.Message
}

func (c *captureNotifier) MessageSent(_ context.Context, conv domain.Conversation, msg domain.Message) {
	c.convs = append(c.convs, conv)
	c.msgs = append(c.msgs, msg)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCreatePrivateConversationNotMutual(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	uc := NewCreateConversationUseCase(st, &stubFollows{mutual: false}, testLogger())

	_, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		ConvType:       domain.ConversationTypePrivate,
		ParticipantIDs: []string{"bob"},
	})
	if !errors.Is(err, domain.ErrNotMutualFollow) {
		t.Fatalf("expected ErrNotMutualFollow, got %v", err)
	}

	// nothing persisted
	for _, user := range []string{"alice", "bob"} {
		parts, err := st.ListUserParticipants(context.Background(), user)
		if err != nil {
			t.Fatalf("ListUserParticipants(%s): %v", user, err)
		}
		if len(parts) != 0 {
			t.Fatalf("expected no memberships for %s, got %d", user, len(parts))
		}
	}
}

func TestCreatePrivateConversationFollowCheckFailsClosed(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	uc := NewCreateConversationUseCase(st, &stubFollows{mutual: true, err: errors.New("graph unreachable")}, testLogger())

	_, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		ConvType:       domain.ConversationTypePrivate,
		ParticipantIDs: []string{"bob"},
	})
	if !errors.Is(err, domain.ErrNotMutualFollow) {
		t.Fatalf("expected fail-closed ErrNotMutualFollow, got %v", err)
	}
}

func TestCreatePrivateConversationMutual(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	uc := NewCreateConversationUseCase(st, &stubFollows{mutual: true}, testLogger())

	out, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		ConvType:       domain.ConversationTypePrivate,
		ParticipantIDs: []string{"bob"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(out.Participants))
	}
	if out.Conversation.ConvType != domain.ConversationTypePrivate {
		t.Fatalf("unexpected conversation type %d", out.Conversation.ConvType)
	}

	members, err := st.ListParticipants(context.Background(), out.Conversation.ID)
	if err != nil {
		t.Fatalf("ListParticipants: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 persisted participant rows, got %d", len(members))
	}
}

func TestCreatePrivateConversationWrongCount(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	uc := NewCreateConversationUseCase(st, &stubFollows{mutual: true}, testLogger())

	for _, ids := range [][]string{nil, {"bob", "carol"}, {"alice"}} {
		_, err := uc.Execute(context.Background(), CreateConversationInput{
			CreatorID:      "alice",
			ConvType:       domain.ConversationTypePrivate,
			ParticipantIDs: ids,
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("participants %v: expected ErrValidation, got %v", ids, err)
		}
	}
}

func TestCreateGroupConversationIgnoresFollowStatus(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	follows := &stubFollows{mutual: false}
	uc := NewCreateConversationUseCase(st, follows, testLogger())

	out, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		ConvType:       domain.ConversationTypeGroup,
		ParticipantIDs: []string{"bob", "carol"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.Participants) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(out.Participants))
	}
	if follows.calls != 0 {
		t.Fatalf("group creation must not consult the follow graph, got %d calls", follows.calls)
	}
}

func TestCreateConversationNormalizesParticipants(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	uc := NewCreateConversationUseCase(st, &stubFollows{mutual: true}, testLogger())

	// duplicates and the creator itself are dropped before the count check
	out, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		ConvType:       domain.ConversationTypePrivate,
		ParticipantIDs: []string{"bob", "bob", "alice"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.Participants) != 2 {
		t.Fatalf("expected 2 participants after normalization, got %d", len(out.Participants))
	}
}

func newConversation(t *testing.T, st *storeAdapter.MemoryStore, convType domain.ConversationType, members ...string) string {
	t.Helper()
	uc := NewCreateConversationUseCase(st, &stubFollows{mutual: true}, testLogger())
	out, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      members[0],
		ConvType:       convType,
		ParticipantIDs: members[1:],
	})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return out.Conversation.ID
}

func TestSendMessageNonParticipant(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	convID := newConversation(t, st, domain.ConversationTypePrivate, "alice", "bob")

	notifier := &captureNotifier{}
	uc := NewSendMessageUseCase(st, notifier, testLogger())

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: convID,
		SenderID:       "mallory",
		Body:           "hi",
		MsgType:        domain.MessageTypeText,
	})
	if !errors.Is(err, domain.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	msgs, err := st.MessagesBefore(context.Background(), convID, 0, 10)
	if err != nil {
		t.Fatalf("MessagesBefore: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no persisted messages, got %d", len(msgs))
	}
	if len(notifier.msgs) != 0 {
		t.Fatal("notifier must not fire for rejected sends")
	}
}

func TestSendMessageUpdatesConversationSummary(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	convID := newConversation(t, st, domain.ConversationTypePrivate, "alice", "bob")

	notifier := &captureNotifier{}
	uc := NewSendMessageUseCase(st, notifier, testLogger())

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: convID,
		SenderID:       "alice",
		Body:           "hello bob",
		MsgType:        domain.MessageTypeText,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if msg.ID <= 0 {
		t.Fatalf("expected a store-assigned message ID, got %d", msg.ID)
	}

	conv, err := st.GetConversation(context.Background(), convID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if conv.LastMessageID != msg.ID {
		t.Fatalf("summary last_message_id = %d, want %d", conv.LastMessageID, msg.ID)
	}
	if conv.LastMessageBody == nil || *conv.LastMessageBody != "hello bob" {
		t.Fatalf("summary body = %v, want %q", conv.LastMessageBody, "hello bob")
	}
	if conv.LastMessageSenderID == nil || *conv.LastMessageSenderID != "alice" {
		t.Fatalf("summary sender = %v, want alice", conv.LastMessageSenderID)
	}
	if !conv.LastMessageAt.Equal(msg.CreatedAt) {
		t.Fatalf("summary last_message_at = %v, want %v", conv.LastMessageAt, msg.CreatedAt)
	}

	if len(notifier.msgs) != 1 {
		t.Fatalf("expected 1 notified message, got %d", len(notifier.msgs))
	}
	if notifier.convs[0].LastMessageID != msg.ID {
		t.Fatal("notifier received a stale conversation summary")
	}
}

func TestSendMessageValidation(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	convID := newConversation(t, st, domain.ConversationTypePrivate, "alice", "bob")
	uc := NewSendMessageUseCase(st, nil, testLogger())

	if _, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: convID, SenderID: "alice", Body: "   ", MsgType: domain.MessageTypeText,
	}); !errors.Is(err, domain.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: convID, SenderID: "alice", Body: "hi", MsgType: 42,
	}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown type, got %v", err)
	}
}

func TestMarkAsReadIsMonotonic(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	convID := newConversation(t, st, domain.ConversationTypePrivate, "alice", "bob")

	send := NewSendMessageUseCase(st, nil, testLogger())
	var last int64
	for i := 0; i < 5; i++ {
		msg, err := send.Execute(context.Background(), SendMessageInput{
			ConversationID: convID, SenderID: "alice", Body: "m", MsgType: domain.MessageTypeText,
		})
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		last = msg.ID
	}

	read := NewMarkAsReadUseCase(st, testLogger())
	advanced, err := read.Execute(context.Background(), MarkAsReadInput{
		ConversationID: convID, UserID: "bob", MessageID: last,
	})
	if err != nil || !advanced {
		t.Fatalf("expected cursor to advance, got advanced=%v err=%v", advanced, err)
	}

	// out-of-order ack never moves the cursor backward
	advanced, err = read.Execute(context.Background(), MarkAsReadInput{
		ConversationID: convID, UserID: "bob", MessageID: last - 2,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if advanced {
		t.Fatal("cursor regressed on out-of-order ack")
	}

	p, err := st.GetParticipant(context.Background(), convID, "bob")
	if err != nil {
		t.Fatalf("GetParticipant: %v", err)
	}
	if p.LastReadMessageID == nil || *p.LastReadMessageID != last {
		t.Fatalf("cursor = %v, want %d", p.LastReadMessageID, last)
	}
}

func TestMarkAsReadNonParticipant(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	convID := newConversation(t, st, domain.ConversationTypePrivate, "alice", "bob")

	read := NewMarkAsReadUseCase(st, testLogger())
	_, err := read.Execute(context.Background(), MarkAsReadInput{
		ConversationID: convID, UserID: "mallory", MessageID: 1,
	})
	if !errors.Is(err, domain.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestGetMessagesPagination(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	convID := newConversation(t, st, domain.ConversationTypePrivate, "alice", "bob")

	send := NewSendMessageUseCase(st, nil, testLogger())
	for i := 0; i < 25; i++ {
		if _, err := send.Execute(context.Background(), SendMessageInput{
			ConversationID: convID, SenderID: "alice", Body: "m", MsgType: domain.MessageTypeText,
		}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	get := NewGetMessagesUseCase(st)

	first, err := get.Execute(context.Background(), GetMessagesInput{
		ConversationID: convID, UserID: "bob", Limit: 20,
	})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Messages) != 20 || !first.HasMore {
		t.Fatalf("first page: got %d messages hasMore=%v, want 20/true", len(first.Messages), first.HasMore)
	}

	second, err := get.Execute(context.Background(), GetMessagesInput{
		ConversationID: convID, UserID: "bob", BeforeID: first.NextCursor, Limit: 20,
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Messages) != 5 || second.HasMore {
		t.Fatalf("second page: got %d messages hasMore=%v, want 5/false", len(second.Messages), second.HasMore)
	}

	// pages are disjoint and together cover all 25 IDs in descending order
	seen := make(map[int64]bool)
	var prev int64
	for i, m := range append(first.Messages, second.Messages...) {
		if seen[m.ID] {
			t.Fatalf("duplicate message %d across pages", m.ID)
		}
		seen[m.ID] = true
		if i > 0 && m.ID >= prev {
			t.Fatalf("IDs not strictly descending: %d then %d", prev, m.ID)
		}
		prev = m.ID
	}
	if len(seen) != 25 {
		t.Fatalf("pages cover %d messages, want 25", len(seen))
	}
}

func TestGetMessagesNonParticipantGetsEmptyPage(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	convID := newConversation(t, st, domain.ConversationTypePrivate, "alice", "bob")

	send := NewSendMessageUseCase(st, nil, testLogger())
	if _, err := send.Execute(context.Background(), SendMessageInput{
		ConversationID: convID, SenderID: "alice", Body: "secret", MsgType: domain.MessageTypeText,
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	get := NewGetMessagesUseCase(st)
	page, err := get.Execute(context.Background(), GetMessagesInput{
		ConversationID: convID, UserID: "mallory", Limit: 10,
	})
	if err != nil {
		t.Fatalf("read path must not error for non-members, got %v", err)
	}
	if len(page.Messages) != 0 || page.HasMore {
		t.Fatalf("expected empty page, got %d messages hasMore=%v", len(page.Messages), page.HasMore)
	}
}

func TestListConversationsOrderedByActivity(t *testing.T) {
	st := storeAdapter.NewMemoryStore()
	first := newConversation(t, st, domain.ConversationTypePrivate, "alice", "bob")
	second := newConversation(t, st, domain.ConversationTypeGroup, "alice", "bob", "carol")

	send := NewSendMessageUseCase(st, nil, testLogger())
	// activity in the older conversation moves it back to the top
	if _, err := send.Execute(context.Background(), SendMessageInput{
		ConversationID: second, SenderID: "alice", Body: "a", MsgType: domain.MessageTypeText,
	}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := send.Execute(context.Background(), SendMessageInput{
		ConversationID: first, SenderID: "bob", Body: "b", MsgType: domain.MessageTypeText,
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	list := NewListConversationsUseCase(st)
	convs, err := list.Execute(context.Background(), ListConversationsInput{UserID: "alice"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	if convs[0].ID != first {
		t.Fatalf("most recently active conversation should rank first, got %s", convs[0].ID)
	}
	if convs[0].LastMessageAt.Before(convs[1].LastMessageAt) {
		t.Fatal("list not ordered by last_message_at descending")
	}
}
