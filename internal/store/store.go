package store

import (
	"errors"
	"time"

	"sce-storefront/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicateSession is returned when a purchase insert hits the unique
// constraint on stripe_session_id. Reconciliation treats this as "another
// request for the same checkout session got there first" and re-reads the
// existing row instead of failing.
var ErrDuplicateSession = errors.New("store: purchase already recorded for session")

// ItemUpdate carries the optional fields of a partial item update.
// Nil fields are left untouched.
type ItemUpdate struct {
	Name        *string  `json:"name"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Available   *int     `json:"available"`
	Status      *string  `json:"status"`
	Image       *string  `json:"image"`
}

// ItemStore handles catalog persistence.
type ItemStore interface {
	List(activeOnly bool) ([]models.Item, error)
	GetByID(id int) (*models.Item, error)
	Create(item *models.Item) error
	Update(id int, update ItemUpdate) (*models.Item, error)
	Delete(id int) error

	// DecrementAvailable atomically decrements available by one and flips
	// status to Inactive when the count reaches zero. It never goes below
	// zero: when available is already zero the call is a no-op and the
	// current item is returned unchanged.
	DecrementAvailable(id int) (*models.Item, error)

	// FindByName matches a catalog item by display name, newest
	// first when names collide.
	FindByName(name string) (*models.Item, error)
}

// DonationOptionStore handles the quick-pick donation amounts.
type DonationOptionStore interface {
	List() ([]models.DonationOption, error)

	// ReplaceAll deletes every existing option and inserts the given set
	// in order, in a single transaction. Last writer wins.
	ReplaceAll(options []models.DonationOption) ([]models.DonationOption, error)
}

// PurchaseStore handles purchase and address persistence.
type PurchaseStore interface {
	List() ([]models.Purchase, error)
	GetBySessionID(sessionID string) (*models.Purchase, error)

	// Create inserts the address (when non-nil) and the purchase. A unique
	// violation on stripe_session_id is reported as ErrDuplicateSession.
	Create(purchase *models.Purchase, address *models.Address) error
}

// UserStore handles admin accounts.
type UserStore interface {
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	SetResetToken(userID int, token string, expires time.Time) error
	UpdatePassword(userID int, passwordHash string) error
}
