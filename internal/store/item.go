package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"sce-storefront/internal/models"
)

// ItemDB is the Postgres-backed ItemStore.
type ItemDB struct {
	DB *sqlx.DB
}

func NewItemDB(db *sqlx.DB) *ItemDB {
	return &ItemDB{DB: db}
}

func (s *ItemDB) List(activeOnly bool) ([]models.Item, error) {
	items := []models.Item{}
	query := `SELECT id, name, type, description, price, available, status, image, created_at
	          FROM items ORDER BY created_at DESC`
	if activeOnly {
		query = `SELECT id, name, type, description, price, available, status, image, created_at
		         FROM items WHERE status = 'Active' ORDER BY created_at DESC`
	}
	if err := s.DB.Select(&items, query); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ItemDB) GetByID(id int) (*models.Item, error) {
	var item models.Item
	query := `SELECT id, name, type, description, price, available, status, image, created_at
	          FROM items WHERE id = $1`
	err := s.DB.Get(&item, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ItemDB) Create(item *models.Item) error {
	query := `INSERT INTO items (name, type, description, price, available, status, image)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at`
	return s.DB.Get(item, query,
		item.Name, item.Type, item.Description, item.Price,
		item.Available, item.Status, item.Image)
}

// Update applies a partial update: only non-nil fields change.
func (s *ItemDB) Update(id int, update ItemUpdate) (*models.Item, error) {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Type != nil {
		add("type", *update.Type)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Price != nil {
		add("price", *update.Price)
	}
	if update.Available != nil {
		add("available", *update.Available)
	}
	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.Image != nil {
		add("image", *update.Image)
	}

	if len(sets) == 0 {
		return s.GetByID(id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE items SET %s WHERE id = $%d
		 RETURNING id, name, type, description, price, available, status, image, created_at`,
		strings.Join(sets, ", "), len(args))

	var item models.Item
	err := s.DB.Get(&item, query, args...)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ItemDB) Delete(id int) error {
	res, err := s.DB.Exec(`DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementAvailable does the decrement and the status flip in one
// conditional UPDATE so two concurrent calls can never drive the count
// negative: the WHERE available > 0 guard makes the loser a no-op.
func (s *ItemDB) DecrementAvailable(id int) (*models.Item, error) {
	var item models.Item
	query := `UPDATE items
	          SET available = available - 1,
	              status = CASE WHEN available - 1 <= 0 THEN 'Inactive' ELSE status END
	          WHERE id = $1 AND available > 0
	          RETURNING id, name, type, description, price, available, status, image, created_at`
	err := s.DB.Get(&item, query, id)
	if err == sql.ErrNoRows {
		// Either the item does not exist or it is already at zero.
		return s.GetByID(id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ItemDB) FindByName(name string) (*models.Item, error) {
	var item models.Item
	query := `SELECT id, name, type, description, price, available, status, image, created_at
	          FROM items WHERE name = $1 ORDER BY created_at DESC LIMIT 1`
	err := s.DB.Get(&item, query, name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
