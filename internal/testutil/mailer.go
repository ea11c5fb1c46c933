package testutil

import (
	"strings"
	"sync"
)

// SentMail records one delivery attempt made through the RecordingMailer.
type SentMail struct {
	To       string
	Username string
	URL      string
	Kind     string // "reset" or "confirm"
}

// RecordingMailer captures outgoing mail so tests can fish tokens out of the
// action URLs instead of talking to an SMTP server.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []SentMail
}

func (m *RecordingMailer) SendPasswordReset(to, username, resetURL string) error {
	m.record(SentMail{To: to, Username: username, URL: resetURL, Kind: "reset"})
	return nil
}

func (m *RecordingMailer) SendEmailConfirmation(to, username, confirmURL string) error {
	m.record(SentMail{To: to, Username: username, URL: confirmURL, Kind: "confirm"})
	return nil
}

func (m *RecordingMailer) record(mail SentMail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
}

// Sent returns a copy of all recorded mail.
func (m *RecordingMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastToken returns the token path segment of the most recent mail of kind,
// or "" if none was sent.
func (m *RecordingMailer) LastToken(kind string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Kind == kind {
			parts := strings.Split(m.sent[i].URL, "/")
			return parts[len(parts)-1]
		}
	}
	return ""
}
