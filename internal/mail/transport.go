package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const ProtocolSMTP = "smtp"

var ErrInvalidMessage = errors.New("invalid mail message")

// Message is one plain-text mail. Host and Port name the mail server from
// the catalog settings.
type Message struct {
	Host     string
	Port     int
	Protocol string
	From     string
	To       string
	Subject  string
	Body     string
}

func (m Message) Validate() error {
	var problems []string
	if strings.TrimSpace(m.Host) == "" {
		problems = append(problems, "host is required")
	}
	if m.Port <= 0 || m.Port > 65535 {
		problems = append(problems, "port is out of range")
	}
	if !strings.Contains(m.From, "@") {
		problems = append(problems, "from address is invalid")
	}
	if !strings.Contains(m.To, "@") {
		problems = append(problems, "recipient address is invalid")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMessage, strings.Join(problems, ", "))
	}
	return nil
}

// Transport is the outbound mail delivery port. Send makes exactly one
// delivery attempt.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}
