package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kursadbilgin/registration-engine/internal/domain"
	"github.com/kursadbilgin/registration-engine/internal/observability"
	"github.com/kursadbilgin/registration-engine/internal/repository"
	"go.uber.org/zap"
)

// SiteConfigCache stores the assembled SiteConfig. Get reports a miss with an
// error wrapping domain.ErrNotFound.
type SiteConfigCache interface {
	Get(ctx context.Context) (domain.SiteConfig, error)
	Set(ctx context.Context, site domain.SiteConfig) error
	Invalidate(ctx context.Context) error
}

var siteSettingNames = []string{
	domain.SettingMailServerHost,
	domain.SettingMailServerPort,
	domain.SettingFeedbackEmail,
	domain.SettingSiteName,
	domain.SettingServerProtocol,
	domain.SettingServerHost,
	domain.SettingServerPort,
}

// SettingsService reads and writes catalog settings and assembles the
// SiteConfig the registration workflow runs against.
type SettingsService struct {
	settings repository.SettingRepository
	cache    SiteConfigCache
	basePath string
	logger   *zap.Logger
}

// NewSettingsService returns a settings service. cache may be nil.
func NewSettingsService(
	settings repository.SettingRepository,
	cache SiteConfigCache,
	basePath string,
	logger *zap.Logger,
) (*SettingsService, error) {
	if settings == nil {
		return nil, fmt.Errorf("setting repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SettingsService{
		settings: settings,
		cache:    cache,
		basePath: normalizeBasePath(basePath),
		logger:   logger,
	}, nil
}

// SiteConfig returns the current site configuration. Cache failures fall back
// to the settings table.
func (s *SettingsService) SiteConfig(ctx context.Context) (domain.SiteConfig, error) {
	logger := observability.WithContextLogger(s.logger, ctx)

	if s.cache != nil {
		site, err := s.cache.Get(ctx)
		if err == nil {
			return site, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("site config cache read failed", zap.Error(err))
		}
	}

	values, err := s.settings.GetMany(ctx, siteSettingNames)
	if err != nil {
		return domain.SiteConfig{}, fmt.Errorf("failed to load site settings: %w", err)
	}

	site := domain.SiteConfig{
		MailHost:    strings.TrimSpace(values[domain.SettingMailServerHost]),
		MailPort:    strings.TrimSpace(values[domain.SettingMailServerPort]),
		FromAddress: strings.TrimSpace(values[domain.SettingFeedbackEmail]),
		SiteName:    strings.TrimSpace(values[domain.SettingSiteName]),
		SiteURL: SiteURL(
			values[domain.SettingServerProtocol],
			values[domain.SettingServerHost],
			values[domain.SettingServerPort],
			s.basePath,
		),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, site); err != nil {
			logger.Warn("site config cache write failed", zap.Error(err))
		}
	}
	return site, nil
}

func (s *SettingsService) Get(ctx context.Context, name string) (string, error) {
	name, err := settingName(name)
	if err != nil {
		return "", err
	}
	return s.settings.Get(ctx, name)
}

func (s *SettingsService) List(ctx context.Context) ([]domain.Setting, error) {
	return s.settings.List(ctx)
}

// Set stores a setting and drops the cached site configuration.
func (s *SettingsService) Set(ctx context.Context, name, value string) error {
	name, err := settingName(name)
	if err != nil {
		return err
	}
	if err := s.settings.Set(ctx, name, value); err != nil {
		return fmt.Errorf("failed to store setting %s: %w", name, err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			return fmt.Errorf("setting %s stored but cache invalidation failed: %w", name, err)
		}
	}

	observability.WithContextLogger(s.logger, ctx).Info("setting updated", zap.String("name", name))
	return nil
}

func settingName(name string) (string, error) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return "", fmt.Errorf("%w: setting name is required", domain.ErrValidation)
	}
	return name, nil
}

// SiteURL builds the public catalog URL. Default ports are omitted.
func SiteURL(protocol, host, port, basePath string) string {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	if protocol == "" {
		protocol = "http"
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	port = strings.TrimSpace(port)
	if (protocol == "http" && port == "80") || (protocol == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = host + ":" + port
	}

	u := url.URL{Scheme: protocol, Host: host, Path: normalizeBasePath(basePath)}
	return u.String()
}

func normalizeBasePath(basePath string) string {
	basePath = strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		return ""
	}
	return "/" + basePath
}
