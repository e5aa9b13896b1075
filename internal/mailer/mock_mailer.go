package mailer

import "sync"

// Email is a record of a message captured by MockMailer.
type Email struct {
	Recipient    string
	TemplateFile string
	Data         any
}

// MockMailer implements the Mailer interface by recording messages instead
// of delivering them. Safe for concurrent use, since mails go out from
// background goroutines.
type MockMailer struct {
	mu   sync.Mutex
	sent []Email
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, Email{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
	})

	return nil
}

// GetSentEmails returns a snapshot of everything captured so far.
func (m *MockMailer) GetSentEmails() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Email, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = nil
}
