package store

import (
	"github.com/jmoiron/sqlx"

	"sce-storefront/internal/models"
)

// DonationOptionDB is the Postgres-backed DonationOptionStore.
type DonationOptionDB struct {
	DB *sqlx.DB
}

func NewDonationOptionDB(db *sqlx.DB) *DonationOptionDB {
	return &DonationOptionDB{DB: db}
}

func (s *DonationOptionDB) List() ([]models.DonationOption, error) {
	options := []models.DonationOption{}
	query := `SELECT id, name, amount, "order" FROM donation_options ORDER BY "order" ASC`
	if err := s.DB.Select(&options, query); err != nil {
		return nil, err
	}
	return options, nil
}

// ReplaceAll wipes the table and inserts the submitted set. The admin UI
// always sends the complete desired list, so there is no per-option update.
func (s *DonationOptionDB) ReplaceAll(options []models.DonationOption) ([]models.DonationOption, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM donation_options`); err != nil {
		return nil, err
	}

	query := `INSERT INTO donation_options (name, amount, "order") VALUES ($1, $2, $3)`
	for _, option := range options {
		if _, err := tx.Exec(query, option.Name, option.Amount, option.Order); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.List()
}
