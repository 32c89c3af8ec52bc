// Package mail sends account emails over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"

	"github.com/dajohi/goemail"
)

// Config holds the SMTP settings. Mail is disabled when Host, User or
// Password is empty.
type Config struct {
	Host       string
	User       string
	Password   string
	From       string // "Name <address>" or a bare address
	SkipVerify bool
	ClientURL  string // base URL of the web client used in links
}

// Client sends verification and password reset emails.
type Client struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	clientURL   string
	disabled    bool
}

// NewClient returns a new Client. A client without SMTP credentials is
// disabled: it logs the links it would have sent and reports success.
func NewClient(cfg Config) (*Client, error) {
	clientURL := strings.TrimRight(cfg.ClientURL, "/")

	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		slog.Warn("mail disabled, links will only be logged")
		return &Client{clientURL: clientURL, disabled: true}, nil
	}

	u := &url.URL{
		Scheme: "smtps",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host,
	}

	a, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("parsing from address: %w", err)
	}

	smtp, err := goemail.NewSMTP(u.String(), &tls.Config{
		ServerName:         strings.Split(cfg.Host, ":")[0],
		InsecureSkipVerify: cfg.SkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	slog.Info("mail enabled", "host", cfg.Host, "from", a.Address)
	return &Client{
		smtp:        smtp,
		mailName:    a.Name,
		mailAddress: a.Address,
		clientURL:   clientURL,
	}, nil
}

// IsEnabled reports whether the client actually sends mail.
func (c *Client) IsEnabled() bool {
	return !c.disabled
}

// SendVerification mails the email verification link for token.
func (c *Client) SendVerification(ctx context.Context, to, token string) error {
	link := VerificationURL(c.clientURL, token)
	body, err := createBody(verifyEmailTmpl, link)
	if err != nil {
		return err
	}
	return c.send(ctx, to, verifyEmailSubject, body, link)
}

// SendPasswordReset mails the password reset link for token.
func (c *Client) SendPasswordReset(ctx context.Context, to, token string) error {
	link := ResetURL(c.clientURL, token)
	body, err := createBody(resetPasswordTmpl, link)
	if err != nil {
		return err
	}
	return c.send(ctx, to, resetPasswordSubject, body, link)
}

func (c *Client) send(ctx context.Context, to, subject, body, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.disabled {
		slog.Info("mail not sent", "to", to, "subject", subject, "link", link)
		return nil
	}

	msg := goemail.NewMessage(c.mailAddress, subject, body)
	msg.SetName(c.mailName)
	msg.AddBCC(to)

	if err := c.smtp.Send(msg); err != nil {
		return fmt.Errorf("sending %q to %s: %w", subject, to, err)
	}
	return nil
}

// VerificationURL returns the client link that redeems a verification token.
func VerificationURL(clientURL, token string) string {
	return clientURL + "/verify-email?token=" + url.QueryEscape(token)
}

// ResetURL returns the client link for a password reset token.
func ResetURL(clientURL, token string) string {
	return clientURL + "/reset-password/" + url.PathEscape(token)
}
