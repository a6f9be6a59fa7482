package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseProfileFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Profile
		wantErr bool
	}{
		{name: "canonical", input: "RegisteredUser", want: ProfileRegisteredUser},
		{name: "lowercase with spaces", input: " editor ", want: ProfileEditor},
		{name: "mixed case", input: "uSeRaDmIn", want: ProfileUserAdmin},
		{name: "unknown", input: "superuser", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseProfileFromString(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseProfileFromString() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProfileFromString() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseProfileFromString() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRegistrationRequestValidate(t *testing.T) {
	t.Parallel()

	base := RegistrationRequest{
		Surname: "Doe",
		Name:    "Jane",
		Email:   "jane@example.org",
		Profile: "RegisteredUser",
	}

	tests := []struct {
		name    string
		mutate  func(*RegistrationRequest)
		wantErr bool
	}{
		{name: "valid request", mutate: func(r *RegistrationRequest) {}},
		{name: "missing surname", mutate: func(r *RegistrationRequest) { r.Surname = "" }, wantErr: true},
		{name: "missing name", mutate: func(r *RegistrationRequest) { r.Name = "" }, wantErr: true},
		{name: "missing email", mutate: func(r *RegistrationRequest) { r.Email = "" }, wantErr: true},
		{name: "email without at sign", mutate: func(r *RegistrationRequest) { r.Email = "jane" }, wantErr: true},
		{name: "missing profile", mutate: func(r *RegistrationRequest) { r.Profile = "" }, wantErr: true},
		{name: "unknown profile", mutate: func(r *RegistrationRequest) { r.Profile = "root" }, wantErr: true},
		{name: "two letter language", mutate: func(r *RegistrationRequest) { r.Language = "en" }, wantErr: true},
		{name: "three letter language", mutate: func(r *RegistrationRequest) { r.Language = "fre" }},
		{name: "kind at column width", mutate: func(r *RegistrationRequest) { r.Kind = strings.Repeat("k", MaxKindLength) }},
		{name: "kind too long", mutate: func(r *RegistrationRequest) { r.Kind = strings.Repeat("k", MaxKindLength+1) }, wantErr: true},
		{name: "email too long", mutate: func(r *RegistrationRequest) {
			r.Email = strings.Repeat("a", MaxEmailLength-len("@example.org")+1) + "@example.org"
		}, wantErr: true},
		{name: "state too long", mutate: func(r *RegistrationRequest) { r.State = strings.Repeat("s", MaxStateLength+1) }, wantErr: true},
		{name: "country too long", mutate: func(r *RegistrationRequest) { r.Country = strings.Repeat("c", MaxCountryLength+1) }, wantErr: true},
		{name: "zip too long", mutate: func(r *RegistrationRequest) { r.Zip = strings.Repeat("9", MaxZipLength+1) }, wantErr: true},
		{name: "multibyte country within width", mutate: func(r *RegistrationRequest) { r.Country = strings.Repeat("é", MaxCountryLength) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			current := base
			tt.mutate(&current)

			err := current.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestRegistrationRequestNormalizeAndDefaults(t *testing.T) {
	t.Parallel()

	req := RegistrationRequest{
		Surname:  "  Doe ",
		Email:    " jane@example.org\t",
		Profile:  " editor",
		Language: " FRE ",
	}
	req.Normalize()

	if req.Surname != "Doe" || req.Email != "jane@example.org" {
		t.Fatalf("Normalize() did not trim: %+v", req)
	}
	if req.Language != "fre" {
		t.Fatalf("Language = %q, want fre", req.Language)
	}
	if got := req.RequestedProfile(); got != ProfileEditor {
		t.Fatalf("RequestedProfile() = %s, want %s", got, ProfileEditor)
	}
	if got := req.ConfirmationTemplate(); got != DefaultConfirmationTemplate {
		t.Fatalf("ConfirmationTemplate() = %s, want default", got)
	}
	if got := req.ElevationTemplate(); got != DefaultElevationTemplate {
		t.Fatalf("ElevationTemplate() = %s, want default", got)
	}

	req.Template = "custom-pwd"
	req.ProfileTemplate = "custom-prof"
	if req.ConfirmationTemplate() != "custom-pwd" || req.ElevationTemplate() != "custom-prof" {
		t.Fatal("template overrides should be honored independently")
	}
}

func TestNewRegistrationResultEchoesRequest(t *testing.T) {
	t.Parallel()

	result := NewRegistrationResult(RegistrationRequest{
		Surname: "Doe",
		Name:    "Jane",
		Email:   "jane@example.org",
	}, OutcomeDuplicateIdentity)

	if result.Surname != "Doe" || result.Name != "Jane" || result.Email != "jane@example.org" {
		t.Fatalf("result does not echo request: %+v", result)
	}
	if result.Succeeded() {
		t.Fatal("duplicate outcome should not report success")
	}
	if result.Outcome.String() != "errorEmailAddressAlreadyRegistered" {
		t.Fatalf("Outcome = %s", result.Outcome)
	}
}
