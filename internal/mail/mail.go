// Package mail delivers the account action emails. The token travels as a
// URL path segment, so the links embed it directly after the action path.
package mail

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"
)

// Sender delivers account action emails. The auth service depends on this
// interface; tests substitute a recording fake.
type Sender interface {
	SendPasswordReset(to, username, resetURL string) error
	SendEmailConfirmation(to, username, confirmURL string) error
}

// SMTPSender sends mail over implicit-TLS SMTP (port 465 style).
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

func (s *SMTPSender) SendPasswordReset(to, username, resetURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nTo reset your password, visit the following link:\r\n%s\r\n\r\n"+
			"If you did not make this request then simply ignore this email and no changes will be made.\r\n",
		username, resetURL)
	return s.send(to, "Password Reset Request", body)
}

func (s *SMTPSender) SendEmailConfirmation(to, username, confirmURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nTo confirm your email address, visit the following link:\r\n%s\r\n\r\n"+
			"If you did not create an account then simply ignore this email.\r\n",
		username, confirmURL)
	return s.send(to, "Email Confirm Request", body)
}

func (s *SMTPSender) send(to, subject, body string) error {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.Host})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if auth := s.auth(); auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.From, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// auth returns nil when no credentials are configured, so relays without an
// AUTH extension work.
func (s *SMTPSender) auth() smtp.Auth {
	if s.Username == "" {
		return nil
	}
	return smtp.PlainAuth("", s.Username, s.Password, s.Host)
}

// LogSender is the development fallback when no SMTP server is configured.
// It logs the action URLs instead of delivering anything.
type LogSender struct{}

func (LogSender) SendPasswordReset(to, username, resetURL string) error {
	log.Printf("mail: password reset for %s <%s>: %s", username, to, resetURL)
	return nil
}

func (LogSender) SendEmailConfirmation(to, username, confirmURL string) error {
	log.Printf("mail: email confirmation for %s <%s>: %s", username, to, confirmURL)
	return nil
}
