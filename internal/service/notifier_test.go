package service

import (
	"sync"

	"github.com/vedran77/campusconnect/internal/domain"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []*domain.Message
}

func (n *recordingNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}
