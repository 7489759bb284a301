package testutils

import (
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockCodeSender struct {
	mock.Mock
}

func (m *MockCodeSender) SendVerificationCode(email, code string, expiresAt time.Time) error {
	args := m.Called(email, code, expiresAt)
	return args.Error(0)
}

// SentCode records one delivery captured by RecordingSender.
type SentCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// RecordingSender captures every code handed to it. Safe for concurrent use.
type RecordingSender struct {
	mu   sync.Mutex
	Sent []SentCode
	Err  error
}

func (r *RecordingSender) SendVerificationCode(email, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, SentCode{Email: email, Code: code, ExpiresAt: expiresAt})
	return r.Err
}

func (r *RecordingSender) Last() (SentCode, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return SentCode{}, false
	}
	return r.Sent[len(r.Sent)-1], true
}

func (r *RecordingSender) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Sent)
}

// LastFor is the most recent delivery addressed to email.
func (r *RecordingSender) LastFor(email string) (SentCode, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Sent) - 1; i >= 0; i-- {
		if r.Sent[i].Email == email {
			return r.Sent[i], true
		}
	}
	return SentCode{}, false
}
