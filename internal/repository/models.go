package repository

import (
	"time"

	"github.com/kursadbilgin/registration-engine/internal/domain"
)

// UserModel is the persistence model for the users table.
type UserModel struct {
	ID             int                `gorm:"primaryKey;autoIncrement"`
	Username       string             `gorm:"type:varchar(256);not null;uniqueIndex:idx_users_username"`
	Surname        string             `gorm:"type:varchar(255)"`
	Name           string             `gorm:"type:varchar(255)"`
	Organisation   string             `gorm:"type:varchar(255)"`
	Kind           string             `gorm:"type:varchar(16)"`
	Profile        domain.Profile     `gorm:"type:varchar(32);not null"`
	Password       string             `gorm:"type:varchar(120);not null"`
	AuthType       string             `gorm:"type:varchar(32)"`
	EmailAddresses []UserEmailModel   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Addresses      []UserAddressModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// UserEmailModel stores one email address of a user. Addresses are unique
// across users; the index is the authoritative duplicate-identity guard.
type UserEmailModel struct {
	UserID int    `gorm:"primaryKey"`
	Email  string `gorm:"type:varchar(128);primaryKey;uniqueIndex:idx_email_addresses_email"`
}

func (UserEmailModel) TableName() string {
	return "email_addresses"
}

// UserAddressModel is the persistence model for user postal addresses.
type UserAddressModel struct {
	ID      int    `gorm:"primaryKey;autoIncrement"`
	UserID  int    `gorm:"not null;index:idx_user_addresses_user_id"`
	Address string `gorm:"type:varchar(255)"`
	City    string `gorm:"type:varchar(255)"`
	State   string `gorm:"type:varchar(32)"`
	Zip     string `gorm:"type:varchar(16)"`
	Country string `gorm:"type:varchar(128)"`
}

func (UserAddressModel) TableName() string {
	return "user_addresses"
}

// GroupModel is the persistence model for groups.
type GroupModel struct {
	ID          int    `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(255);not null;uniqueIndex:idx_groups_name"`
	Description string `gorm:"type:text"`
	Email       string `gorm:"type:varchar(128)"`
}

func (GroupModel) TableName() string {
	return "groups"
}

// UserGroupModel is the user/group relation table.
type UserGroupModel struct {
	UserID  int            `gorm:"primaryKey"`
	GroupID int            `gorm:"primaryKey"`
	Profile domain.Profile `gorm:"type:varchar(32);primaryKey"`
}

func (UserGroupModel) TableName() string {
	return "user_groups"
}

// SettingModel is a catalog setting keyed by its slash separated path.
type SettingModel struct {
	Name  string `gorm:"type:varchar(512);primaryKey"`
	Value string `gorm:"type:text"`
}

func (SettingModel) TableName() string {
	return "settings"
}

// IsoLanguageModel is the persistence model for isolanguages.
type IsoLanguageModel struct {
	ID        int                     `gorm:"primaryKey;autoIncrement"`
	Code      string                  `gorm:"type:varchar(3);not null;uniqueIndex:idx_isolanguages_code"`
	ShortCode string                  `gorm:"column:shortcode;type:varchar(2)"`
	Labels    []IsoLanguageLabelModel `gorm:"foreignKey:IsoLanguageID;constraint:OnDelete:CASCADE"`
}

func (IsoLanguageModel) TableName() string {
	return "isolanguages"
}

// IsoLanguageLabelModel is one translated label of an iso language.
type IsoLanguageLabelModel struct {
	IsoLanguageID int    `gorm:"column:iddes;primaryKey"`
	LangID        string `gorm:"column:langid;type:varchar(5);primaryKey"`
	Label         string `gorm:"type:varchar(255);not null"`
}

func (IsoLanguageLabelModel) TableName() string {
	return "isolanguagesdes"
}

func userModelFromDomain(u *domain.User) *UserModel {
	if u == nil {
		return nil
	}

	emails := make([]UserEmailModel, 0, len(u.EmailAddresses))
	for _, email := range u.EmailAddresses {
		emails = append(emails, UserEmailModel{UserID: u.ID, Email: email})
	}
	addresses := make([]UserAddressModel, 0, len(u.Addresses))
	for _, a := range u.Addresses {
		addresses = append(addresses, UserAddressModel{
			UserID:  u.ID,
			Address: a.Address,
			City:    a.City,
			State:   a.State,
			Zip:     a.Zip,
			Country: a.Country,
		})
	}

	return &UserModel{
		ID:             u.ID,
		Username:       u.Username,
		Surname:        u.Surname,
		Name:           u.Name,
		Organisation:   u.Organisation,
		Kind:           u.Kind,
		Profile:        u.Profile,
		Password:       u.PasswordHash,
		AuthType:       u.AuthType,
		EmailAddresses: emails,
		Addresses:      addresses,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func userModelToDomain(m *UserModel) *domain.User {
	if m == nil {
		return nil
	}

	emails := make([]string, 0, len(m.EmailAddresses))
	for _, e := range m.EmailAddresses {
		emails = append(emails, e.Email)
	}
	addresses := make([]domain.Address, 0, len(m.Addresses))
	for _, a := range m.Addresses {
		addresses = append(addresses, domain.Address{
			Address: a.Address,
			City:    a.City,
			State:   a.State,
			Zip:     a.Zip,
			Country: a.Country,
		})
	}

	return &domain.User{
		ID:             m.ID,
		Username:       m.Username,
		Surname:        m.Surname,
		Name:           m.Name,
		Organisation:   m.Organisation,
		Kind:           m.Kind,
		Profile:        m.Profile,
		PasswordHash:   m.Password,
		AuthType:       m.AuthType,
		EmailAddresses: emails,
		Addresses:      addresses,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func groupModelToDomain(m *GroupModel) *domain.Group {
	if m == nil {
		return nil
	}

	return &domain.Group{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Email:       m.Email,
	}
}

func isoLanguageModelToDomain(m *IsoLanguageModel) *domain.IsoLanguage {
	if m == nil {
		return nil
	}

	labels := make(map[string]string, len(m.Labels))
	for _, l := range m.Labels {
		labels[l.LangID] = l.Label
	}

	return &domain.IsoLanguage{
		ID:        m.ID,
		Code:      m.Code,
		ShortCode: m.ShortCode,
		Labels:    labels,
	}
}
