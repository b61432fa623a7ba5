package ports

// MailerPort sends a single message. Auth flows call it fire-and-forget;
// a failed send is logged, never surfaced to the client.
type MailerPort interface {
	Send(to, subject, body string) error
}
