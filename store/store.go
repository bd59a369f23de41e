// Package store is a thin record-store client over the three collections
// the site keeps: users, applications and articles. Every call is a single
// request/response round trip; nothing is retried.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"propertysite/models"
)

const (
	Users        = "users"
	Applications = "applications"
	Articles     = "articles"
)

var (
	ErrNoRows            = errors.New("store: no rows")
	ErrConflict          = errors.New("store: unique constraint violated")
	ErrUnknownCollection = errors.New("store: unknown collection")
	ErrUnknownColumn     = errors.New("store: unknown column")
	ErrMissingFilter     = errors.New("store: update and delete need a filter")
)

// TransportError is any failure talking to the backend that is not an
// empty result.
type TransportError struct {
	Op         string
	Collection string
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type collection struct {
	model   reflect.Type
	columns map[string]bool
}

type Client struct {
	db          *gorm.DB
	collections map[string]collection
}

func NewClient(db *gorm.DB) (*Client, error) {
	c := &Client{db: db, collections: map[string]collection{}}

	protos := map[string]any{
		Users:        &models.User{},
		Applications: &models.Application{},
		Articles:     &models.Article{},
	}
	for name, proto := range protos {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(proto); err != nil {
			return nil, fmt.Errorf("parsing %s schema: %w", name, err)
		}
		cols := make(map[string]bool, len(stmt.Schema.DBNames))
		for _, dbName := range stmt.Schema.DBNames {
			cols[dbName] = true
		}
		c.collections[name] = collection{
			model:   reflect.TypeOf(proto).Elem(),
			columns: cols,
		}
	}
	return c, nil
}

// From starts a query against the named collection.
func (c *Client) From(name string) *Query {
	q := &Query{client: c, name: name, limit: -1}
	coll, ok := c.collections[name]
	if !ok {
		q.err = fmt.Errorf("%w: %q", ErrUnknownCollection, name)
		return q
	}
	q.coll = coll
	return q
}

type condition struct {
	column string
	op     string
	value  any
}

type Query struct {
	client *Client
	name   string
	coll   collection
	conds  []condition
	order  *clause.OrderByColumn
	limit  int
	err    error
}

func (q *Query) checkColumn(col string) bool {
	if q.err != nil {
		return false
	}
	if !q.coll.columns[col] {
		q.err = fmt.Errorf("%w: %s.%s", ErrUnknownColumn, q.name, col)
		return false
	}
	return true
}

func (q *Query) where(col, op string, v any) *Query {
	if q.checkColumn(col) {
		q.conds = append(q.conds, condition{column: col, op: op, value: v})
	}
	return q
}

func (q *Query) Eq(col string, v any) *Query  { return q.where(col, "eq", v) }
func (q *Query) Gte(col string, v any) *Query { return q.where(col, "gte", v) }
func (q *Query) Lte(col string, v any) *Query { return q.where(col, "lte", v) }

// Order sets the single ordering column.
func (q *Query) Order(col string, desc bool) *Query {
	if q.checkColumn(col) {
		q.order = &clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc}
	}
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) newModel() any {
	return reflect.New(q.coll.model).Interface()
}

func (q *Query) build(ctx context.Context) *gorm.DB {
	tx := q.client.db.WithContext(ctx).Model(q.newModel())
	for _, cond := range q.conds {
		col := clause.Column{Name: cond.column}
		switch cond.op {
		case "gte":
			tx = tx.Where(clause.Gte{Column: col, Value: cond.value})
		case "lte":
			tx = tx.Where(clause.Lte{Column: col, Value: cond.value})
		default:
			tx = tx.Where(clause.Eq{Column: col, Value: cond.value})
		}
	}
	if q.order != nil {
		tx = tx.Order(*q.order)
	}
	if q.limit >= 0 {
		tx = tx.Limit(q.limit)
	}
	return tx
}

func (q *Query) fail(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return &TransportError{Op: op, Collection: q.name, Err: err}
}

// Select loads every matching row into dest, a pointer to a slice.
func (q *Query) Select(ctx context.Context, dest any) error {
	if q.err != nil {
		return q.err
	}
	if err := q.build(ctx).Find(dest).Error; err != nil {
		return q.fail("select", err)
	}
	return nil
}

// Single loads exactly one row. ErrNoRows is returned unwrapped so callers
// can tell an empty result from a broken backend.
func (q *Query) Single(ctx context.Context, dest any) error {
	if q.err != nil {
		return q.err
	}
	err := q.build(ctx).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoRows
	}
	if err != nil {
		return q.fail("single", err)
	}
	return nil
}

// Insert writes row and fills in store-assigned fields on it.
func (q *Query) Insert(ctx context.Context, row any) error {
	if q.err != nil {
		return q.err
	}
	if t := reflect.TypeOf(row); t.Kind() != reflect.Ptr || t.Elem() != q.coll.model {
		return fmt.Errorf("store: insert into %s: unexpected row type %T", q.name, row)
	}
	if err := q.client.db.WithContext(ctx).Create(row).Error; err != nil {
		return q.fail("insert", err)
	}
	return nil
}

// Update applies values to every row matching the filter and reports how
// many rows were touched. Timestamps are left alone; callers that want
// updated_at moved pass it in values.
func (q *Query) Update(ctx context.Context, values map[string]any) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if len(q.conds) == 0 {
		return 0, ErrMissingFilter
	}
	for col := range values {
		if !q.checkColumn(col) {
			return 0, q.err
		}
	}
	res := q.build(ctx).UpdateColumns(values)
	if res.Error != nil {
		return 0, q.fail("update", res.Error)
	}
	return res.RowsAffected, nil
}

func (q *Query) Delete(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if len(q.conds) == 0 {
		return 0, ErrMissingFilter
	}
	res := q.build(ctx).Delete(q.newModel())
	if res.Error != nil {
		return 0, q.fail("delete", res.Error)
	}
	return res.RowsAffected, nil
}

// Ping checks the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return &TransportError{Op: "ping", Err: err}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return &TransportError{Op: "ping", Err: err}
	}
	return nil
}
