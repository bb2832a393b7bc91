// Package notify holds the outbound channels: transactional email and SMS.
// Both senders are plain HTTP/SMTP clients configured from the environment;
// the workflow engine talks to them through small interfaces so tests swap
// in fakes.
package notify

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider hosts for transactional email. Both speak authenticated SMTP
// with an API key as the password.
const (
	sendgridHost = "smtp.sendgrid.net:587"
	postmarkHost = "smtp.postmarkapp.com:587"
)

// SMTPSender delivers email over authenticated SMTP. Provider selects the
// relay host; any value other than "postmark" uses SendGrid.
type SMTPSender struct {
	From     string
	Provider string
	APIKey   string

	// Host overrides the provider relay, used by tests.
	Host string
}

// NewSMTPSender returns a sender for the configured provider.
func NewSMTPSender(from, provider, apiKey string) *SMTPSender {
	return &SMTPSender{From: from, Provider: provider, APIKey: apiKey}
}

func (s *SMTPSender) host() string {
	if s.Host != "" {
		return s.Host
	}
	if strings.EqualFold(s.Provider, "postmark") {
		return postmarkHost
	}
	return sendgridHost
}

func (s *SMTPSender) username() string {
	if strings.EqualFold(s.Provider, "postmark") {
		return s.APIKey
	}
	return "apikey"
}

// Send delivers one email with a text and an HTML part and returns the
// generated message id. The context only bounds the overall attempt;
// net/smtp has no per-dial deadline hook, so the send runs in a goroutine
// and is abandoned on context expiry.
func (s *SMTPSender) Send(ctx context.Context, to, subject, text, html string) (string, error) {
	id := uuid.NewString()
	msg := buildMIME(s.From, to, subject, text, html, id)
	host := s.host()
	serverName := host
	if i := strings.IndexByte(host, ':'); i >= 0 {
		serverName = host[:i]
	}
	auth := smtp.PlainAuth("", s.username(), s.APIKey, serverName)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(host, auth, s.From, []string{to}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return "", err
		}
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// buildMIME assembles a multipart/alternative message.
func buildMIME(from, to, subject, text, html, id string) []byte {
	boundary := "b-" + id
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Message-ID: <%s@splitlease>\r\n", id)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(text)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// ForwardedMessage carries everything the forward email shows about a
// message and its conversation.
type ForwardedMessage struct {
	MessageID   uint64
	MessageBody string
	GuestName   string
	GuestEmail  string
	HostName    string
	HostEmail   string
	ListingName string
}

// Email renders the subject, text and HTML bodies of the forward email.
func (f ForwardedMessage) Email() (subject, text, html string) {
	subject = fmt.Sprintf("Forwarded Message - %s", f.ListingName)

	var t strings.Builder
	fmt.Fprintf(&t, "A message has been forwarded from the conversation for %s.\n\n", f.ListingName)
	fmt.Fprintf(&t, "Guest: %s (%s)\n", f.GuestName, f.GuestEmail)
	fmt.Fprintf(&t, "Host: %s (%s)\n\n", f.HostName, f.HostEmail)
	fmt.Fprintf(&t, "Message:\n%s\n\n", f.MessageBody)
	fmt.Fprintf(&t, "Message ID: %d\n", f.MessageID)
	text = t.String()

	var h strings.Builder
	fmt.Fprintf(&h, "<h2>Forwarded Message</h2>")
	fmt.Fprintf(&h, "<p><strong>Listing:</strong> %s</p>", f.ListingName)
	fmt.Fprintf(&h, "<p><strong>Guest:</strong> %s (%s)<br>", f.GuestName, f.GuestEmail)
	fmt.Fprintf(&h, "<strong>Host:</strong> %s (%s)</p>", f.HostName, f.HostEmail)
	fmt.Fprintf(&h, "<blockquote>%s</blockquote>", f.MessageBody)
	fmt.Fprintf(&h, "<p><small>Message ID: %d</small></p>", f.MessageID)
	html = h.String()
	return subject, text, html
}
