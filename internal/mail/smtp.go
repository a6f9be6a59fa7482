package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 15 * time.Second

// TLS policies accepted by SMTPOptions.TLSPolicy.
const (
	TLSOpportunistic = "opportunistic"
	TLSMandatory     = "mandatory"
	TLSNone          = "none"
)

type SMTPOptions struct {
	Username  string
	Password  string
	TLSPolicy string
	Timeout   time.Duration
}

// SMTPTransport delivers messages straight to the mail server named in each
// message. A connection is opened per send.
type SMTPTransport struct {
	opts      SMTPOptions
	tlsPolicy gomail.TLSPolicy
}

var _ Transport = (*SMTPTransport)(nil)

func NewSMTPTransport(opts SMTPOptions) (*SMTPTransport, error) {
	policy, err := parseTLSPolicy(opts.TLSPolicy)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultSMTPTimeout
	}

	return &SMTPTransport{opts: opts, tlsPolicy: policy}, nil
}

func parseTLSPolicy(value string) (gomail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", TLSOpportunistic:
		return gomail.TLSOpportunistic, nil
	case TLSMandatory:
		return gomail.TLSMandatory, nil
	case TLSNone:
		return gomail.NoTLS, nil
	}
	return gomail.NoTLS, fmt.Errorf("unsupported smtp tls policy %q", value)
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if t == nil {
		return fmt.Errorf("smtp transport is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if msg.Protocol != "" && !strings.EqualFold(msg.Protocol, ProtocolSMTP) {
		return fmt.Errorf("%w: unsupported protocol %q", ErrInvalidMessage, msg.Protocol)
	}

	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("%w: from: %v", ErrInvalidMessage, err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("%w: to: %v", ErrInvalidMessage, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	options := []gomail.Option{
		gomail.WithPort(msg.Port),
		gomail.WithTLSPolicy(t.tlsPolicy),
		gomail.WithTimeout(t.opts.Timeout),
	}
	if t.opts.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.opts.Username),
			gomail.WithPassword(t.opts.Password),
		)
	}

	client, err := gomail.NewClient(msg.Host, options...)
	if err != nil {
		return &TransportError{Message: "smtp client setup failed", Cause: err}
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return classifySMTPError(err)
	}
	return nil
}

func classifySMTPError(err error) error {
	transient := false

	var sendErr *gomail.SendError
	var netErr net.Error
	switch {
	case errors.As(err, &sendErr):
		transient = sendErr.IsTemp()
	case errors.Is(err, context.DeadlineExceeded):
		transient = true
	case errors.As(err, &netErr):
		transient = netErr.Timeout()
	}

	return &TransportError{
		Message:   "smtp delivery failed",
		Transient: transient,
		Cause:     err,
	}
}
