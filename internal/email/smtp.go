package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// SMTPConfig holds the configuration for the SMTP email sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLSMode is "implicit" for SMTPS or "starttls" to upgrade a plain connection
	TLSMode string
}

// SMTPSender implements Sender by relaying through an SMTP submission server.
// The connection is always encrypted before credentials are sent.
type SMTPSender struct {
	cfg       SMTPConfig
	tlsConfig *tls.Config
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp: host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = "implicit"
	}

	return &SMTPSender{
		cfg:       cfg,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}, nil
}

// Name returns the provider name.
func (s *SMTPSender) Name() string {
	return "smtp"
}

// Send sends an email over an encrypted SMTP session.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	raw, err := BuildMIME(msg)
	if err != nil {
		return fmt.Errorf("smtp: failed to build message: %w", err)
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp: failed to create client: %w", err)
	}
	defer client.Close()

	if s.cfg.TLSMode == "starttls" {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return errors.New("smtp: server does not support STARTTLS")
		}
		if err := client.StartTLS(s.tlsConfig); err != nil {
			return fmt.Errorf("smtp: STARTTLS failed: %w", err)
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp: authentication failed: %w", err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp: failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp: failed to add recipient %s: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: failed to open data connection: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("smtp: failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: message rejected: %w", err)
	}

	return client.Quit()
}

func (s *SMTPSender) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	netDialer := &net.Dialer{Timeout: 30 * time.Second}

	if s.cfg.TLSMode == "starttls" {
		conn, err := netDialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("smtp: failed to connect to %s: %w", addr, err)
		}
		return conn, nil
	}

	dialer := &tls.Dialer{NetDialer: netDialer, Config: s.tlsConfig}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp: failed to connect to %s: %w", addr, err)
	}
	return conn, nil
}
