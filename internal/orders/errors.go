package orders

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ValidationError lists every field-level problem found in a request.
type ValidationError struct {
	Fields []string
}

func (e ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// ProductNotFoundError names all requested product ids that do not exist.
type ProductNotFoundError struct {
	ProductIDs []int64
}

func (e ProductNotFoundError) Error() string {
	ids := lo.Map(e.ProductIDs, func(id int64, _ int) string {
		return strconv.FormatInt(id, 10)
	})
	return "invalid product IDs: " + strings.Join(ids, ", ")
}

type ProductUnavailableError struct {
	ProductID int64
	Name      string
}

func (e ProductUnavailableError) Error() string {
	return fmt.Sprintf("product '%s' is currently unavailable and cannot be ordered", e.Name)
}

// PersistenceError is a store failure while the order transaction was open.
// Nothing from the attempt was committed.
type PersistenceError struct {
	Err error
}

func (e PersistenceError) Error() string {
	return "persist order: " + e.Err.Error()
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}

// NotificationError never reaches callers of CreateOrder; it is logged and
// audited after the order has been committed.
type NotificationError struct {
	OrderID int64
	Err     error
}

func (e NotificationError) Error() string {
	return fmt.Sprintf("order #%d notification: %v", e.OrderID, e.Err)
}

func (e NotificationError) Unwrap() error {
	return e.Err
}
