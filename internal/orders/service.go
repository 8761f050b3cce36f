package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"vegorder/internal/models"
	"vegorder/internal/port"
)

const (
	emailFailedMessage = "email notification failed"

	defaultTxTimeout     = 10 * time.Second
	defaultNotifyTimeout = 10 * time.Second
	auditTimeout         = 5 * time.Second
)

type Config struct {
	TxTimeout     time.Duration
	NotifyTimeout time.Duration
}

// Service runs the order creation workflow: validate, re-price from the
// product store, persist atomically, then notify without letting the
// notification decide the outcome.
type Service struct {
	store         port.OrderStore
	notifier      port.OrderNotifier
	validate      *validator.Validate
	txTimeout     time.Duration
	notifyTimeout time.Duration
	now           func() time.Time
}

func NewService(store port.OrderStore, notifier port.OrderNotifier, cfg Config) *Service {
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = defaultTxTimeout
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}

	return &Service{
		store:         store,
		notifier:      notifier,
		validate:      newValidator(),
		txTimeout:     cfg.TxTimeout,
		notifyTimeout: cfg.NotifyTimeout,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

// CreateOrder returns ValidationError, ProductNotFoundError,
// ProductUnavailableError or PersistenceError; in all of those cases nothing
// was stored. Any returned Result is committed, whatever EmailSent says.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Result, error) {
	req = req.normalized()

	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	lines := mergeLines(req.Items)
	if err := validateMergedLines(lines); err != nil {
		return nil, err
	}

	// The commit must not be cut short by the client going away.
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.txTimeout)
	defer cancel()

	var (
		order models.Order
		items []models.OrderItem
	)
	err := s.store.WithinTransaction(txCtx, func(ctx context.Context, tx port.OrderTx) error {
		products, err := tx.FindProductsByIDs(ctx, lineProductIDs(lines))
		if err != nil {
			return fmt.Errorf("tx.FindProductsByIDs: %w", err)
		}

		priced, err := priceLines(lines, products)
		if err != nil {
			return err
		}

		now := s.now()
		order = models.Order{
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			CustomerAddress: req.CustomerAddress,
			Notes:           req.Notes,
			TotalAmount:     priced.TotalAmount,
			TotalItems:      priced.TotalItems,
			Status:          models.OrderStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return fmt.Errorf("tx.InsertOrder: %w", err)
		}

		items = priced.Items
		for i := range items {
			items[i].OrderID = order.ID
			items[i].CreatedAt = now
		}
		if err := tx.InsertOrderItems(ctx, items); err != nil {
			return fmt.Errorf("tx.InsertOrderItems: %w", err)
		}

		for _, item := range items {
			if err := tx.RecordProductUsage(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("tx.RecordProductUsage: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, classifyTxError(err)
	}

	log.Printf("[ORDER] [INFO] order #%d created: %d item(s), total %s", order.ID, len(items), order.TotalAmount.StringFixed(moneyPlaces))

	result := &Result{Order: order, Items: items}
	s.notify(ctx, result)

	return result, nil
}

func classifyTxError(err error) error {
	var (
		notFound    ProductNotFoundError
		unavailable ProductUnavailableError
	)
	if errors.As(err, &notFound) || errors.As(err, &unavailable) {
		return err
	}
	log.Println("[ORDER] [ERROR] transaction rolled back:", err)
	return PersistenceError{Err: err}
}

func (s *Service) notify(ctx context.Context, result *Result) {
	err := s.send(ctx, result.Order, result.Items)
	if err == nil {
		result.EmailSent = true
		log.Printf("[ORDER] [INFO] confirmation email sent for order #%d", result.Order.ID)
		return
	}

	notifyErr := NotificationError{OrderID: result.Order.ID, Err: err}
	log.Println("[ORDER] [ERROR]", notifyErr)
	result.EmailError = emailFailedMessage

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	failure := models.EmailFailure{
		OrderID:      result.Order.ID,
		Email:        result.Order.CustomerEmail,
		ErrorMessage: err.Error(),
		CreatedAt:    s.now(),
	}
	if err := s.store.InsertEmailFailure(auditCtx, &failure); err != nil {
		log.Printf("[ORDER] [ERROR] failed to log email failure for order #%d: %v", result.Order.ID, err)
	}
}

// send bounds the notifier call even when the notifier ignores its context.
func (s *Service) send(ctx context.Context, order models.Order, items []models.OrderItem) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.notifier.SendOrderNotification(ctx, order, items)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("notifier gave no answer within %s: %w", s.notifyTimeout, ctx.Err())
	}
}
