package models

import "time"

// We use 'db' tags for sqlx to automatically map
// the database column names (snake_case) to our Go fields (CamelCase).

// Item type values.
const (
	ItemTypeWorkshop    = "workshop"
	ItemTypeEvent       = "event"
	ItemTypeMerchandise = "merchandise"
)

// Item status values.
const (
	ItemStatusActive   = "Active"
	ItemStatusInactive = "Inactive"
)

// Purchase type values. Unknown checkout sources default to workshop.
const (
	PurchaseTypeDonation    = "donation"
	PurchaseTypeWorkshop    = "workshop"
	PurchaseTypeEvent       = "event"
	PurchaseTypeMerchandise = "merchandise"
)

// Purchase status values.
const (
	PurchaseStatusCompleted = "completed"
	PurchaseStatusPending   = "pending"
	PurchaseStatusRefunded  = "refunded"
)

// User represents an admin account.
type User struct {
	ID                int        `db:"id" json:"id"`
	Username          string     `db:"username" json:"username"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	ResetToken        *string    `db:"reset_token" json:"-"`
	ResetTokenExpires *time.Time `db:"reset_token_expires" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
}

// Item is a purchasable catalog entry: a workshop, an event, or merchandise.
type Item struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Type        string    `db:"type" json:"type"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Available   int       `db:"available" json:"available"`
	Status      string    `db:"status" json:"status"`
	Image       string    `db:"image" json:"image"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// DonationOption is one of the quick-pick amounts shown on the donation form.
type DonationOption struct {
	ID     int     `db:"id" json:"id"`
	Name   string  `db:"name" json:"name"`
	Amount float64 `db:"amount" json:"amount"`
	Order  int     `db:"order" json:"order"`
}

// Address is owned by exactly one purchase. No reuse or dedup.
type Address struct {
	ID      int    `db:"id" json:"id"`
	Street  string `db:"street" json:"street"`
	City    string `db:"city" json:"city"`
	State   string `db:"state" json:"state"`
	ZipCode string `db:"zip_code" json:"zipCode"`
	Country string `db:"country" json:"country"`
}

// Purchase is the record materialized by payment reconciliation.
// StripeSessionID is the idempotency key: the unique constraint on it is
// what guarantees at most one purchase row per hosted checkout session.
type Purchase struct {
	ID              int       `db:"id" json:"id"`
	ItemName        string    `db:"item_name" json:"itemName"`
	Amount          float64   `db:"amount" json:"amount"`
	Type            string    `db:"type" json:"type"`
	Reason          string    `db:"reason" json:"reason"`
	StripeSessionID string    `db:"stripe_session_id" json:"stripeSessionId"`
	Date            time.Time `db:"date" json:"date"`
	Status          string    `db:"status" json:"status"`
	AddressID       *int      `db:"address_id" json:"addressId,omitempty"`
	Email           string    `db:"email" json:"email"`
	FirstName       string    `db:"first_name" json:"firstName"`
	LastName        string    `db:"last_name" json:"lastName"`

	// Address is populated on reads that join the addresses table.
	Address *Address `db:"-" json:"address,omitempty"`
}
