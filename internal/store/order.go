package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/darzi/internal/model"
	"github.com/google/uuid"
)

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderCols = `id, order_number, customer_id, description, fabric_details,
	price, advance_payment, delivery_date, status, created_at, updated_at`

func scanOrder(scanner interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var description, fabricDetails, deliveryDate sql.NullString
	var price, advancePayment sql.NullFloat64

	err := scanner.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &description, &fabricDetails,
		&price, &advancePayment, &deliveryDate, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Description = strPtr(description)
	o.FabricDetails = strPtr(fabricDetails)
	o.Price = floatPtr(price)
	o.AdvancePayment = floatPtr(advancePayment)
	o.DeliveryDate = strPtr(deliveryDate)
	return &o, nil
}

func scanOrderWithCustomer(scanner interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var description, fabricDetails, deliveryDate sql.NullString
	var price, advancePayment sql.NullFloat64
	var cust model.CustomerSummary
	var custPhone sql.NullString

	err := scanner.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &description, &fabricDetails,
		&price, &advancePayment, &deliveryDate, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		&cust.ID, &cust.Name, &custPhone,
	)
	if err != nil {
		return nil, err
	}

	o.Description = strPtr(description)
	o.FabricDetails = strPtr(fabricDetails)
	o.Price = floatPtr(price)
	o.AdvancePayment = floatPtr(advancePayment)
	o.DeliveryDate = strPtr(deliveryDate)
	cust.Phone = strPtr(custPhone)
	o.Customer = &cust
	return &o, nil
}

func orderArgs(o *model.Order) []any {
	return []any{
		o.ID, o.OrderNumber, o.CustomerID, nullStr(o.Description), nullStr(o.FabricDetails),
		nullFloat(o.Price), nullFloat(o.AdvancePayment), nullStr(o.DeliveryDate),
		o.Status, o.CreatedAt, o.UpdatedAt,
	}
}

const orderInsert = `INSERT INTO orders (` + orderCols + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// NextOrderNumber computes the day-scoped order number for the given day:
// YYYYMMDD-NNN where NNN is one more than the count of orders already
// carrying that day's prefix. The count is a plain read, so two concurrent
// creations can compute the same number.
func (s *OrderStore) NextOrderNumber(day time.Time) (string, error) {
	prefix := day.Format("20060102")

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE order_number LIKE ?`, prefix+"%").Scan(&count)
	if err != nil {
		return "", fmt.Errorf("count orders for %s: %w", prefix, err)
	}

	return fmt.Sprintf("%s-%03d", prefix, count+1), nil
}

// Create inserts a new order, assigning an ID, order number, pending status,
// and timestamps.
func (s *OrderStore) Create(o *model.Order) (*model.Order, error) {
	number, err := s.NextOrderNumber(time.Now())
	if err != nil {
		return nil, err
	}

	o.ID = uuid.NewString()
	o.OrderNumber = number
	o.Status = model.OrderStatusPending
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	if _, err := s.db.Exec(orderInsert, orderArgs(o)...); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return s.GetByID(o.ID)
}

// InsertTx inserts an order record verbatim inside a transaction, preserving
// its ID, order number, and timestamps. Used by snapshot restore.
func (s *OrderStore) InsertTx(tx *sql.Tx, o *model.Order) error {
	if _, err := tx.Exec(orderInsert, orderArgs(o)...); err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}
	return nil
}

// DeleteAllTx wipes the orders table inside a transaction.
func (s *OrderStore) DeleteAllTx(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM orders`); err != nil {
		return fmt.Errorf("delete all orders: %w", err)
	}
	return nil
}

const orderJoinCols = `o.id, o.order_number, o.customer_id, o.description, o.fabric_details,
	o.price, o.advance_payment, o.delivery_date, o.status, o.created_at, o.updated_at,
	c.id, c.name, c.phone`

func (s *OrderStore) GetByID(id string) (*model.Order, error) {
	row := s.db.QueryRow(
		`SELECT `+orderJoinCols+` FROM orders o JOIN customers c ON c.id = o.customer_id WHERE o.id = ?`,
		id,
	)
	o, err := scanOrderWithCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List returns orders newest first with the customer summary joined in.
// A non-empty status filters to that status.
func (s *OrderStore) List(status string) ([]model.Order, error) {
	query := `SELECT ` + orderJoinCols + ` FROM orders o JOIN customers c ON c.id = o.customer_id`
	var args []any
	if status != "" {
		query += ` WHERE o.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY o.created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrderWithCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// ListAll returns raw order rows without the customer join, oldest first.
// Used by snapshot export.
func (s *OrderStore) ListAll() ([]model.Order, error) {
	rows, err := s.db.Query(`SELECT ` + orderCols + ` FROM orders ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// Update overwrites the editable fields and refreshes updated_at. The order
// number and customer reference are immutable after creation.
func (s *OrderStore) Update(id string, o *model.Order) (*model.Order, error) {
	_, err := s.db.Exec(
		`UPDATE orders SET description = ?, fabric_details = ?, price = ?,
		 advance_payment = ?, delivery_date = ?, updated_at = ? WHERE id = ?`,
		nullStr(o.Description), nullStr(o.FabricDetails), nullFloat(o.Price),
		nullFloat(o.AdvancePayment), nullStr(o.DeliveryDate), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return s.GetByID(id)
}

func (s *OrderStore) UpdateStatus(id string, status model.OrderStatus) (*model.Order, error) {
	_, err := s.db.Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return s.GetByID(id)
}

func (s *OrderStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}
