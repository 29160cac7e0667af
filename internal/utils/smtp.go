package utils

import (
	"fmt"
	"strings"
	"time"

	"panveliq/internal/config"
	"panveliq/internal/utils/logger"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

var smtpLog = logger.New("smtp")

// EmailMessage is one outbound email.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// SMTPSender sends email through the configured relay with a simple token
// bucket keeping the send rate under the provider ceiling.
type SMTPSender struct {
	cfg    config.SMTPConfig
	tokens chan struct{}
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	rate := cfg.MaxSendRate
	if rate <= 0 {
		rate = 10
	}

	s := &SMTPSender{
		cfg:    cfg,
		tokens: make(chan struct{}, rate),
	}
	for i := 0; i < rate; i++ {
		s.tokens <- struct{}{}
	}
	go s.refill(rate)
	return s
}

func (s *SMTPSender) refill(rate int) {
	ticker := time.NewTicker(time.Second)
	for range ticker.C {
		for i := 0; i < rate; i++ {
			select {
			case s.tokens <- struct{}{}:
			default:
			}
		}
	}
}

// Send delivers one message, blocking until a send slot is free.
func (s *SMTPSender) Send(msg *EmailMessage) error {
	<-s.tokens

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)

	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", s.cfg.FromEmail)
	fmt.Fprintf(&body, "To: %s\r\n", msg.To)
	fmt.Fprintf(&body, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&body, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&body, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	fmt.Fprintf(&body, "\r\n%s\r\n", msg.Body)

	err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{msg.To}, strings.NewReader(body.String()))
	if err != nil {
		return smtpLog.Error(fmt.Sprintf("failed to send to %s", msg.To), err)
	}
	return nil
}

// SendBatch delivers to every recipient, collecting per-recipient failures
// instead of stopping at the first one.
func (s *SMTPSender) SendBatch(recipients []string, subject, body string, html bool) map[string]error {
	failures := make(map[string]error)
	for _, to := range recipients {
		msg := &EmailMessage{To: to, Subject: subject, Body: body, HTML: html}
		if err := s.Send(msg); err != nil {
			failures[to] = err
		}
	}
	if len(failures) > 0 {
		smtpLog.Warn("batch finished with %d/%d failures", len(failures), len(recipients))
	}
	return failures
}
