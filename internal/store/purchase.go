package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"sce-storefront/internal/models"
)

// Postgres unique_violation.
const uniqueViolationCode = "23505"

// PurchaseDB is the Postgres-backed PurchaseStore.
type PurchaseDB struct {
	DB *sqlx.DB
}

func NewPurchaseDB(db *sqlx.DB) *PurchaseDB {
	return &PurchaseDB{DB: db}
}

// purchaseRow flattens the purchase/address join for sqlx scanning.
type purchaseRow struct {
	models.Purchase
	AddrID      *int    `db:"addr_id"`
	AddrStreet  *string `db:"addr_street"`
	AddrCity    *string `db:"addr_city"`
	AddrState   *string `db:"addr_state"`
	AddrZipCode *string `db:"addr_zip_code"`
	AddrCountry *string `db:"addr_country"`
}

func (r *purchaseRow) toPurchase() models.Purchase {
	p := r.Purchase
	if r.AddrID != nil {
		p.Address = &models.Address{
			ID:      *r.AddrID,
			Street:  deref(r.AddrStreet),
			City:    deref(r.AddrCity),
			State:   deref(r.AddrState),
			ZipCode: deref(r.AddrZipCode),
			Country: deref(r.AddrCountry),
		}
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const purchaseSelect = `
	SELECT p.id, p.item_name, p.amount, p.type, p.reason, p.stripe_session_id,
	       p.date, p.status, p.address_id, p.email, p.first_name, p.last_name,
	       a.id AS addr_id, a.street AS addr_street, a.city AS addr_city,
	       a.state AS addr_state, a.zip_code AS addr_zip_code, a.country AS addr_country
	FROM purchases p
	LEFT JOIN addresses a ON a.id = p.address_id`

func (s *PurchaseDB) List() ([]models.Purchase, error) {
	rows := []purchaseRow{}
	if err := s.DB.Select(&rows, purchaseSelect+` ORDER BY p.date DESC`); err != nil {
		return nil, err
	}
	purchases := make([]models.Purchase, 0, len(rows))
	for i := range rows {
		purchases = append(purchases, rows[i].toPurchase())
	}
	return purchases, nil
}

func (s *PurchaseDB) GetBySessionID(sessionID string) (*models.Purchase, error) {
	var row purchaseRow
	err := s.DB.Get(&row, purchaseSelect+` WHERE p.stripe_session_id = $1`, sessionID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p := row.toPurchase()
	return &p, nil
}

// Create inserts the address (when given) and the purchase in one
// transaction. A unique violation on stripe_session_id rolls everything
// back and surfaces as ErrDuplicateSession so the caller can re-read the
// row the concurrent request inserted.
func (s *PurchaseDB) Create(purchase *models.Purchase, address *models.Address) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if address != nil {
		query := `INSERT INTO addresses (street, city, state, zip_code, country)
		          VALUES ($1, $2, $3, $4, $5) RETURNING id`
		if err := tx.Get(&address.ID, query,
			address.Street, address.City, address.State, address.ZipCode, address.Country); err != nil {
			return err
		}
		purchase.AddressID = &address.ID
		purchase.Address = address
	}

	query := `INSERT INTO purchases
	            (item_name, amount, type, reason, stripe_session_id, date, status,
	             address_id, email, first_name, last_name)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`
	err = tx.Get(&purchase.ID, query,
		purchase.ItemName, purchase.Amount, purchase.Type, purchase.Reason,
		purchase.StripeSessionID, purchase.Date, purchase.Status,
		purchase.AddressID, purchase.Email, purchase.FirstName, purchase.LastName)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateSession
		}
		return err
	}

	return tx.Commit()
}
