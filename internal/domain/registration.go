package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Template names used when the caller does not override them.
const (
	DefaultConfirmationTemplate = "registration-pwd-email"
	DefaultElevationTemplate    = "registration-prof-email"
)

// Field limits of a registration request, in characters. They match the
// widths of the identity store columns the fields are written to.
const (
	MaxSurnameLength      = 255
	MaxNameLength         = 255
	MaxEmailLength        = 128
	MaxProfileLength      = 32
	MaxAddressLength      = 255
	MaxCityLength         = 255
	MaxStateLength        = 32
	MaxZipLength          = 16
	MaxCountryLength      = 128
	MaxOrganisationLength = 255
	MaxKindLength         = 16
)

// RegistrationRequest carries the caller-supplied registration fields.
type RegistrationRequest struct {
	Surname      string
	Name         string
	Email        string
	Profile      string
	Address      string
	City         string
	State        string
	Zip          string
	Country      string
	Organisation string
	Kind         string

	// Optional overrides. Empty means the default template and language.
	Template        string
	ProfileTemplate string
	Language        string
}

// Normalize trims every field in place.
func (r *RegistrationRequest) Normalize() {
	for _, field := range []*string{
		&r.Surname, &r.Name, &r.Email, &r.Profile,
		&r.Address, &r.City, &r.State, &r.Zip, &r.Country,
		&r.Organisation, &r.Kind,
		&r.Template, &r.ProfileTemplate, &r.Language,
	} {
		*field = strings.TrimSpace(*field)
	}
	r.Language = strings.ToLower(r.Language)
}

func (r *RegistrationRequest) Validate() error {
	if r.Surname == "" {
		return fmt.Errorf("%w: surname is required", ErrValidation)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if r.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, r.Email)
	}
	if r.Profile == "" {
		return fmt.Errorf("%w: profile is required", ErrValidation)
	}
	if _, err := ParseProfileFromString(r.Profile); err != nil {
		return err
	}
	if r.Language != "" && len(r.Language) != 3 {
		return fmt.Errorf("%w: language must be a 3 letter code", ErrValidation)
	}

	for _, field := range []struct {
		name  string
		value string
		max   int
	}{
		{"surname", r.Surname, MaxSurnameLength},
		{"name", r.Name, MaxNameLength},
		{"email", r.Email, MaxEmailLength},
		{"profile", r.Profile, MaxProfileLength},
		{"address", r.Address, MaxAddressLength},
		{"city", r.City, MaxCityLength},
		{"state", r.State, MaxStateLength},
		{"zip", r.Zip, MaxZipLength},
		{"country", r.Country, MaxCountryLength},
		{"org", r.Organisation, MaxOrganisationLength},
		{"kind", r.Kind, MaxKindLength},
	} {
		if utf8.RuneCountInString(field.value) > field.max {
			return fmt.Errorf("%w: %s must be at most %d characters", ErrValidation, field.name, field.max)
		}
	}
	return nil
}

// RequestedProfile returns the canonical requested profile. It assumes
// Validate succeeded.
func (r *RegistrationRequest) RequestedProfile() Profile {
	p, _ := ParseProfileFromString(r.Profile)
	return p
}

func (r *RegistrationRequest) ConfirmationTemplate() string {
	if r.Template != "" {
		return r.Template
	}
	return DefaultConfirmationTemplate
}

func (r *RegistrationRequest) ElevationTemplate() string {
	if r.ProfileTemplate != "" {
		return r.ProfileTemplate
	}
	return DefaultElevationTemplate
}

// Outcome is the terminal state of a registration call. Non-success values are
// the error codes exposed to callers.
type Outcome string

const (
	OutcomeSuccess              Outcome = "success"
	OutcomeDuplicateIdentity    Outcome = "errorEmailAddressAlreadyRegistered"
	OutcomeDeliveryFailed       Outcome = "errorEmailToAddressFailed"
	OutcomeProfileRequestFailed Outcome = "errorProfileRequestFailed"
)

func (o Outcome) String() string { return string(o) }

// RegistrationResult echoes the identifying request fields and carries the
// outcome. Username is set only on success.
type RegistrationResult struct {
	Outcome  Outcome
	Surname  string
	Name     string
	Email    string
	Username string
}

func (r *RegistrationResult) Succeeded() bool {
	return r != nil && r.Outcome == OutcomeSuccess
}

// NewRegistrationResult builds a result echoing the request.
func NewRegistrationResult(req RegistrationRequest, outcome Outcome) *RegistrationResult {
	return &RegistrationResult{
		Outcome: outcome,
		Surname: req.Surname,
		Name:    req.Name,
		Email:   req.Email,
	}
}
