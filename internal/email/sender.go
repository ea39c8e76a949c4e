package email

import "context"

// Sender is the interface that all email providers must implement.
// This abstraction allows swapping email providers (SMTP, Gmail, SES)
// without changing business logic.
type Sender interface {
	// Send delivers the message. The returned error carries the provider's
	// reason for rejecting it.
	Send(ctx context.Context, msg Message) error
	// Name returns the provider name used in logs.
	Name() string
}

// Message represents an email message to be sent.
type Message struct {
	From        string // sender address
	To          string // recipient email address
	ReplyTo     string // optional reply-to address
	Subject     string // email subject
	TextBody    string // plain-text body
	Attachments []Attachment
}

// Attachment is a file attached to a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}
