package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kursadbilgin/registration-engine/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const siteConfigKey = "settings:site-config"

// ErrCacheMiss is returned by SiteConfigCache.Get when nothing is cached.
var ErrCacheMiss = fmt.Errorf("site config cache: %w", domain.ErrNotFound)

type cachedSiteConfig struct {
	MailHost    string `json:"mailHost"`
	MailPort    string `json:"mailPort"`
	FromAddress string `json:"fromAddress"`
	SiteName    string `json:"siteName"`
	SiteURL     string `json:"siteUrl"`
}

// SiteConfigCache keeps the assembled site configuration in Redis so that
// registrations do not read the settings table on every request.
type SiteConfigCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSiteConfigCache(client *goredis.Client, ttl time.Duration) (*SiteConfigCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &SiteConfigCache{client: client, ttl: ttl}, nil
}

func (c *SiteConfigCache) Get(ctx context.Context) (domain.SiteConfig, error) {
	raw, err := c.client.Get(ctx, siteConfigKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.SiteConfig{}, ErrCacheMiss
	}
	if err != nil {
		return domain.SiteConfig{}, fmt.Errorf("failed to read site config cache: %w", err)
	}

	var cached cachedSiteConfig
	if err := json.Unmarshal(raw, &cached); err != nil {
		return domain.SiteConfig{}, fmt.Errorf("failed to decode site config cache: %w", err)
	}

	return domain.SiteConfig{
		MailHost:    cached.MailHost,
		MailPort:    cached.MailPort,
		FromAddress: cached.FromAddress,
		SiteName:    cached.SiteName,
		SiteURL:     cached.SiteURL,
	}, nil
}

func (c *SiteConfigCache) Set(ctx context.Context, site domain.SiteConfig) error {
	if c.ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(cachedSiteConfig{
		MailHost:    site.MailHost,
		MailPort:    site.MailPort,
		FromAddress: site.FromAddress,
		SiteName:    site.SiteName,
		SiteURL:     site.SiteURL,
	})
	if err != nil {
		return fmt.Errorf("failed to encode site config: %w", err)
	}

	if err := c.client.Set(ctx, siteConfigKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write site config cache: %w", err)
	}
	return nil
}

func (c *SiteConfigCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, siteConfigKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate site config cache: %w", err)
	}
	return nil
}
