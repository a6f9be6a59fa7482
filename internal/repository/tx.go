package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IdentityStores are the stores available inside a transaction scope. All of
// them share the same underlying transaction.
type IdentityStores struct {
	Users       UserRepository
	Groups      GroupRepository
	Memberships UserGroupRepository
}

// TxManager runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back when fn returns an error or panics; it is
// released on every exit path.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores IdentityStores) error) error
}

type GormTxManager struct {
	db *gorm.DB
}

func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

func (m *GormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, stores IdentityStores) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, IdentityStores{
			Users:       NewGormUserRepo(tx),
			Groups:      NewGormGroupRepo(tx),
			Memberships: NewGormUserGroupRepo(tx),
		})
	})
}

// IsUniqueViolation reports whether err comes from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
