package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// UnconfiguredSiteName is the site name a fresh installation ships with.
// A site still carrying it must not send registration mail.
const UnconfiguredSiteName = "dummy"

// SiteConfig holds the site-level settings the registration workflow reads.
type SiteConfig struct {
	MailHost    string
	MailPort    string
	FromAddress string
	SiteName    string
	SiteURL     string
}

// Validate is the configuration gate. It fails closed: any missing mail
// setting or an unconfigured site name refuses the operation.
func (c SiteConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.MailHost) == "" {
		missing = append(missing, "mail server host")
	}
	if strings.TrimSpace(c.MailPort) == "" {
		missing = append(missing, "mail server port")
	}
	if strings.TrimSpace(c.FromAddress) == "" {
		missing = append(missing, "feedback email")
	}
	if strings.TrimSpace(c.SiteName) == "" {
		missing = append(missing, "site name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing settings in system configuration (%s), cannot do self registration",
			ErrConfiguration, strings.Join(missing, ", "))
	}

	if c.SiteName == UnconfiguredSiteName {
		return fmt.Errorf("%w: site name is not configured, cannot do self registration", ErrConfiguration)
	}
	if _, err := c.Port(); err != nil {
		return err
	}
	return nil
}

// Port parses the mail server port.
func (c SiteConfig) Port() (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(c.MailPort))
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%w: invalid mail server port %q", ErrConfiguration, c.MailPort)
	}
	return port, nil
}

// Setting is a catalog setting identified by its slash separated path,
// e.g. system/feedback/mailServer/host.
type Setting struct {
	Name  string
	Value string
}

// Setting names read by the registration workflow.
const (
	SettingMailServerHost = "system/feedback/mailServer/host"
	SettingMailServerPort = "system/feedback/mailServer/port"
	SettingFeedbackEmail  = "system/feedback/email"
	SettingSiteName       = "system/site/name"
	SettingServerProtocol = "system/server/protocol"
	SettingServerHost     = "system/server/host"
	SettingServerPort     = "system/server/port"
)
