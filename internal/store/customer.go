package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/darzi/internal/model"
	"github.com/google/uuid"
)

type CustomerStore struct {
	db *sql.DB
}

func NewCustomerStore(db *sql.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

const customerCols = `id, name, phone, qameez_length, chest, waist, neck, sleeve_length,
	shalwar_length, shalwar_width, paicha, collar_size, cuff_width, placket_width,
	armhole, elbow, bain, daman, gher, front_pocket, side_pocket, shalwar_pocket,
	notes, created_at, updated_at`

func scanCustomer(scanner interface{ Scan(...any) error }) (*model.Customer, error) {
	var c model.Customer
	var phone, frontPocket, sidePocket, shalwarPocket, notes sql.NullString
	measurements := make([]sql.NullFloat64, 16)

	dest := []any{&c.ID, &c.Name, &phone}
	for i := range measurements {
		dest = append(dest, &measurements[i])
	}
	dest = append(dest, &frontPocket, &sidePocket, &shalwarPocket, &notes, &c.CreatedAt, &c.UpdatedAt)

	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	c.Phone = strPtr(phone)
	c.QameezLength = floatPtr(measurements[0])
	c.Chest = floatPtr(measurements[1])
	c.Waist = floatPtr(measurements[2])
	c.Neck = floatPtr(measurements[3])
	c.SleeveLength = floatPtr(measurements[4])
	c.ShalwarLength = floatPtr(measurements[5])
	c.ShalwarWidth = floatPtr(measurements[6])
	c.Paicha = floatPtr(measurements[7])
	c.CollarSize = floatPtr(measurements[8])
	c.CuffWidth = floatPtr(measurements[9])
	c.PlacketWidth = floatPtr(measurements[10])
	c.Armhole = floatPtr(measurements[11])
	c.Elbow = floatPtr(measurements[12])
	c.Bain = floatPtr(measurements[13])
	c.Daman = floatPtr(measurements[14])
	c.Gher = floatPtr(measurements[15])
	c.FrontPocket = strPtr(frontPocket)
	c.SidePocket = strPtr(sidePocket)
	c.ShalwarPocket = strPtr(shalwarPocket)
	c.Notes = strPtr(notes)
	return &c, nil
}

func customerArgs(c *model.Customer) []any {
	return []any{
		c.ID, c.Name, nullStr(c.Phone),
		nullFloat(c.QameezLength), nullFloat(c.Chest), nullFloat(c.Waist), nullFloat(c.Neck),
		nullFloat(c.SleeveLength), nullFloat(c.ShalwarLength), nullFloat(c.ShalwarWidth),
		nullFloat(c.Paicha), nullFloat(c.CollarSize), nullFloat(c.CuffWidth), nullFloat(c.PlacketWidth),
		nullFloat(c.Armhole), nullFloat(c.Elbow), nullFloat(c.Bain), nullFloat(c.Daman), nullFloat(c.Gher),
		nullStr(c.FrontPocket), nullStr(c.SidePocket), nullStr(c.ShalwarPocket), nullStr(c.Notes),
		c.CreatedAt, c.UpdatedAt,
	}
}

const customerInsert = `INSERT INTO customers (` + customerCols + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Create inserts a new customer, assigning an ID and timestamps.
func (s *CustomerStore) Create(c *model.Customer) (*model.Customer, error) {
	c.ID = uuid.NewString()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.db.Exec(customerInsert, customerArgs(c)...); err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return s.GetByID(c.ID)
}

// InsertTx inserts a customer record verbatim inside a transaction,
// preserving its ID and timestamps. Used by snapshot restore.
func (s *CustomerStore) InsertTx(tx *sql.Tx, c *model.Customer) error {
	if _, err := tx.Exec(customerInsert, customerArgs(c)...); err != nil {
		return fmt.Errorf("insert customer %s: %w", c.ID, err)
	}
	return nil
}

// DeleteAllTx wipes the customers table inside a transaction.
func (s *CustomerStore) DeleteAllTx(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM customers`); err != nil {
		return fmt.Errorf("delete all customers: %w", err)
	}
	return nil
}

func (s *CustomerStore) GetByID(id string) (*model.Customer, error) {
	row := s.db.QueryRow(`SELECT `+customerCols+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// List returns customers newest first. A non-empty search matches name or
// phone, case-insensitively.
func (s *CustomerStore) List(search string) ([]model.Customer, error) {
	query := `SELECT ` + customerCols + ` FROM customers`
	var args []any
	if search != "" {
		query += ` WHERE name LIKE ? COLLATE NOCASE OR phone LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// ListAll returns every customer row, oldest first. Used by snapshot export.
func (s *CustomerStore) ListAll() ([]model.Customer, error) {
	rows, err := s.db.Query(`SELECT ` + customerCols + ` FROM customers ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list all customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// Update overwrites all editable fields and refreshes updated_at.
func (s *CustomerStore) Update(id string, c *model.Customer) (*model.Customer, error) {
	_, err := s.db.Exec(
		`UPDATE customers SET name = ?, phone = ?, qameez_length = ?, chest = ?, waist = ?,
		 neck = ?, sleeve_length = ?, shalwar_length = ?, shalwar_width = ?, paicha = ?,
		 collar_size = ?, cuff_width = ?, placket_width = ?, armhole = ?, elbow = ?,
		 bain = ?, daman = ?, gher = ?, front_pocket = ?, side_pocket = ?,
		 shalwar_pocket = ?, notes = ?, updated_at = ? WHERE id = ?`,
		c.Name, nullStr(c.Phone),
		nullFloat(c.QameezLength), nullFloat(c.Chest), nullFloat(c.Waist), nullFloat(c.Neck),
		nullFloat(c.SleeveLength), nullFloat(c.ShalwarLength), nullFloat(c.ShalwarWidth),
		nullFloat(c.Paicha), nullFloat(c.CollarSize), nullFloat(c.CuffWidth), nullFloat(c.PlacketWidth),
		nullFloat(c.Armhole), nullFloat(c.Elbow), nullFloat(c.Bain), nullFloat(c.Daman), nullFloat(c.Gher),
		nullStr(c.FrontPocket), nullStr(c.SidePocket), nullStr(c.ShalwarPocket), nullStr(c.Notes),
		time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return s.GetByID(id)
}

func (s *CustomerStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
