package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultRelayTimeout = 10 * time.Second

type relayRequest struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// RelayTransport hands messages to an HTTP mail relay.
type RelayTransport struct {
	client   *resty.Client
	endpoint string
}

var _ Transport = (*RelayTransport)(nil)

func NewRelayTransport(endpoint string) (*RelayTransport, error) {
	client := resty.New()
	client.SetTimeout(defaultRelayTimeout)
	client.SetRetryCount(0)

	return NewRelayTransportWithClient(endpoint, client)
}

func NewRelayTransportWithClient(endpoint string, client *resty.Client) (*RelayTransport, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("relay endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid relay endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultRelayTimeout)
	}
	client.SetRetryCount(0)

	return &RelayTransport{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

func (t *RelayTransport) Send(ctx context.Context, msg Message) error {
	if t == nil || t.client == nil {
		return fmt.Errorf("relay transport is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	protocol := msg.Protocol
	if protocol == "" {
		protocol = ProtocolSMTP
	}

	response, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(relayRequest{
			Host:     msg.Host,
			Port:     msg.Port,
			Protocol: protocol,
			From:     msg.From,
			To:       msg.To,
			Subject:  msg.Subject,
			Body:     msg.Body,
		}).
		Post(t.endpoint)
	if err != nil {
		return &TransportError{
			Message:   "relay request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return &TransportError{
			Message:   "relay returned empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	return &TransportError{
		StatusCode: statusCode,
		Message:    relayErrorMessage(statusCode, strings.TrimSpace(response.String())),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func relayErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("relay returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}
