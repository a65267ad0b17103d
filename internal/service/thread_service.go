package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/internal/repository"
	"github.com/vedran77/campusconnect/pkg/metrics"
	"github.com/vedran77/campusconnect/pkg/validator"
)

var (
	ErrNotParticipant    = errors.New("you are not a participant of this thread")
	ErrThreadNotFound    = errors.New("thread not found")
	ErrCannotMessageSelf = errors.New("cannot start a thread with yourself")
)

// Notifier broadcasts real-time events to connected clients.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
}

type ThreadService struct {
	messageRepo repository.MessageRepository
	accountRepo repository.AccountRepository
	metrics     *metrics.Manager
	notifier    Notifier
}

func NewThreadService(messageRepo repository.MessageRepository, accountRepo repository.AccountRepository, m *metrics.Manager) *ThreadService {
	return &ThreadService{
		messageRepo: messageRepo,
		accountRepo: accountRepo,
		metrics:     m,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ThreadService) SetNotifier(n Notifier) {
	s.notifier = n
}

type SendMessageInput struct {
	Text string `json:"text"`
}

// Send appends a message to the thread between sender and other, creating
// the thread implicitly on its first message.
func (s *ThreadService) Send(ctx context.Context, senderID, otherID uuid.UUID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if err := validator.ValidateMessage(text).OrNil(); err != nil {
		return nil, err
	}

	threadID, err := domain.DeriveThreadID(senderID.String(), otherID.String())
	if err != nil {
		return nil, ErrCannotMessageSelf
	}

	other, err := s.accountRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrAccountNotFound
	}

	msg := &domain.Message{
		ID:       uuid.New(),
		ThreadID: threadID,
		SenderID: senderID,
		Text:     text,
		SentAt:   time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	s.metrics.MessageSent()
	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
	}

	return msg, nil
}

// Messages returns the thread's messages oldest first.
func (s *ThreadService) Messages(ctx context.Context, callerID uuid.UUID, threadID string) ([]domain.Message, error) {
	if err := CheckParticipant(callerID, threadID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// Threads returns the caller's threads with their latest message, most
// recently active first.
func (s *ThreadService) Threads(ctx context.Context, callerID uuid.UUID) ([]domain.ThreadSummary, error) {
	latest, err := s.messageRepo.ListThreads(ctx, callerID)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]uuid.UUID, 0, len(latest))
	summaries := make([]domain.ThreadSummary, 0, len(latest))
	for _, m := range latest {
		a, b, err := domain.ThreadParticipants(m.ThreadID)
		if err != nil {
			return nil, fmt.Errorf("thread %q: %w", m.ThreadID, err)
		}
		other := a
		if a == callerID {
			other = b
		}
		otherIDs = append(otherIDs, other)
		summaries = append(summaries, domain.ThreadSummary{
			ID:          m.ThreadID,
			LastMessage: m.Text,
			LastSentAt:  m.SentAt,
			OtherUserID: other,
		})
	}

	if len(otherIDs) > 0 {
		accounts, err := s.accountRepo.ListByIDs(ctx, otherIDs)
		if err != nil {
			return nil, err
		}
		names := make(map[uuid.UUID]string, len(accounts))
		for _, a := range accounts {
			names[a.ID] = a.Name
		}
		for i := range summaries {
			summaries[i].OtherUserName = names[summaries[i].OtherUserID]
		}
	}

	return summaries, nil
}

// Contacts lists everyone the caller can start a thread with.
func (s *ThreadService) Contacts(ctx context.Context, callerID uuid.UUID) ([]domain.AccountSummary, error) {
	accounts, err := s.accountRepo.ListExcept(ctx, callerID)
	if err != nil {
		return nil, err
	}

	contacts := make([]domain.AccountSummary, 0, len(accounts))
	for i := range accounts {
		contacts = append(contacts, *accounts[i].Summary())
	}
	return contacts, nil
}

// CheckParticipant verifies that accountID is one of the thread's two
// participants.
func CheckParticipant(accountID uuid.UUID, threadID string) error {
	a, b, err := domain.ThreadParticipants(threadID)
	if err != nil {
		return ErrThreadNotFound
	}
	if accountID != a && accountID != b {
		return ErrNotParticipant
	}
	return nil
}
