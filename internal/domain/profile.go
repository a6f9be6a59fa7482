package domain

import (
	"fmt"
	"strings"
)

// Profile is a named authorization role.
type Profile string

const (
	ProfileAdministrator  Profile = "Administrator"
	ProfileUserAdmin      Profile = "UserAdmin"
	ProfileReviewer       Profile = "Reviewer"
	ProfileEditor         Profile = "Editor"
	ProfileRegisteredUser Profile = "RegisteredUser"
	ProfileGuest          Profile = "Guest"
	ProfileMonitor        Profile = "Monitor"
)

var profiles = []Profile{
	ProfileAdministrator,
	ProfileUserAdmin,
	ProfileReviewer,
	ProfileEditor,
	ProfileRegisteredUser,
	ProfileGuest,
	ProfileMonitor,
}

func (p Profile) String() string { return string(p) }

func (p Profile) IsValid() bool {
	for _, known := range profiles {
		if p == known {
			return true
		}
	}
	return false
}

// ParseProfileFromString matches a profile name ignoring case and returns the
// canonical spelling.
func ParseProfileFromString(s string) (Profile, error) {
	trimmed := strings.TrimSpace(s)
	for _, known := range profiles {
		if strings.EqualFold(trimmed, known.String()) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: invalid profile %q", ErrValidation, s)
}
