package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kursadbilgin/registration-engine/internal/domain"
)

type fakeStore struct {
	values map[string]string
	sets   []string
}

func (f *fakeStore) List(ctx context.Context) ([]domain.Setting, error) {
	return []domain.Setting{
		{Name: domain.SettingFeedbackEmail, Value: f.values[domain.SettingFeedbackEmail]},
		{Name: domain.SettingSiteName, Value: f.values[domain.SettingSiteName]},
	}, nil
}

func (f *fakeStore) Get(ctx context.Context, name string) (string, error) {
	value, ok := f.values[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (f *fakeStore) Set(ctx context.Context, name, value string) error {
	f.sets = append(f.sets, name+"="+value)
	f.values[name] = value
	return nil
}

func (f *fakeStore) SiteConfig(ctx context.Context) (domain.SiteConfig, error) {
	return domain.SiteConfig{
		MailHost:    f.values[domain.SettingMailServerHost],
		MailPort:    f.values[domain.SettingMailServerPort],
		FromAddress: f.values[domain.SettingFeedbackEmail],
		SiteName:    f.values[domain.SettingSiteName],
	}, nil
}

func runCmd(t *testing.T, store *fakeStore, args ...string) (string, error) {
	t.Helper()

	closed := false
	open := func(ctx context.Context) (settingsStore, func(), error) {
		return store, func() { closed = true }, nil
	}

	var out bytes.Buffer
	cmd := newRootCmd(open, &out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil && !closed {
		t.Fatal("store was not closed")
	}
	return out.String(), err
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{
		domain.SettingMailServerHost: "",
		domain.SettingMailServerPort: "25",
		domain.SettingFeedbackEmail:  "catalog@example.org",
		domain.SettingSiteName:       domain.UnconfiguredSiteName,
	}}
}

func TestSettingsCommands(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		out, err := runCmd(t, newFakeStore(), "list")
		if err != nil {
			t.Fatalf("list error = %v", err)
		}
		if !strings.Contains(out, "system/feedback/email") || !strings.Contains(out, "catalog@example.org") {
			t.Fatalf("list output = %q", out)
		}
	})

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		out, err := runCmd(t, newFakeStore(), "get", domain.SettingMailServerPort)
		if err != nil {
			t.Fatalf("get error = %v", err)
		}
		if strings.TrimSpace(out) != "25" {
			t.Fatalf("get output = %q, want 25", out)
		}

		if _, err := runCmd(t, newFakeStore(), "get", "system/unknown"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("get unknown error = %v, want %v", err, domain.ErrNotFound)
		}
	})

	t.Run("set", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		if _, err := runCmd(t, store, "set", domain.SettingSiteName, "My catalog"); err != nil {
			t.Fatalf("set error = %v", err)
		}
		if len(store.sets) != 1 || store.sets[0] != "system/site/name=My catalog" {
			t.Fatalf("sets = %v", store.sets)
		}

		if _, err := runCmd(t, store, "set", domain.SettingSiteName); err == nil {
			t.Fatal("set with one argument error = nil, want error")
		}
	})

	t.Run("site", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		out, err := runCmd(t, store, "site")
		if err != nil {
			t.Fatalf("site error = %v", err)
		}
		if !strings.Contains(out, "disabled") {
			t.Fatalf("site output = %q, want registration disabled", out)
		}

		store.values[domain.SettingMailServerHost] = "smtp.example.org"
		store.values[domain.SettingSiteName] = "Catalog"
		out, err = runCmd(t, store, "site")
		if err != nil {
			t.Fatalf("site error = %v", err)
		}
		if !strings.Contains(out, "enabled") {
			t.Fatalf("site output = %q, want registration enabled", out)
		}
	})
}
