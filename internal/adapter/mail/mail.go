package mail

import (
	"gopkg.in/gomail.v2"

	"github.com/tmuthoni/chama_backend/internal/config"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

type GomailAdapter struct {
	dialer *gomail.Dialer
	from   string
}

func NewGomailAdapter(config *config.SMTP) ports.MailerPort {
	return &GomailAdapter{
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Password),
		from:   config.From,
	}
}

func (g *GomailAdapter) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", g.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return g.dialer.DialAndSend(m)
}

var _ ports.MailerPort = (*GomailAdapter)(nil)
