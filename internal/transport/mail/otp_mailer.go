package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/notify"
)

// OTPMailer delivers handoff codes over SMTP when no message broker is
// configured. It implements notify.Notifier.
type OTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	useTLS   bool
}

func NewOTPMailer(host, port, username, password, from string, useTLS bool) *OTPMailer {
	return &OTPMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		useTLS:   useTLS,
	}
}

func (m *OTPMailer) NotifyHandoffCode(ctx context.Context, notice notify.HandoffNotice) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}
	if strings.TrimSpace(notice.Recipient) == "" {
		return errors.New("mailer: notice has no recipient address")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	subject := "Your DonateWay pickup code"
	body := fmt.Sprintf(
		"Use code %s to confirm the %s donation handoff.\r\nThe code expires at %s.\r\n",
		notice.Code, notice.Kind, notice.ExpiresAt.Format("15:04 MST, Jan 2"),
	)
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + notice.Recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if m.useTLS {
		return m.sendTLS(addr, auth, notice.Recipient, []byte(msg))
	}
	return smtp.SendMail(addr, auth, m.from, []string{notice.Recipient}, []byte(msg))
}

func (m *OTPMailer) sendTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("mailer: tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mailer: smtp client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("mailer: auth: %w", err)
		}
	}
	if err := client.Mail(m.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(msg); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return client.Quit()
}
