package models

import (
	"fmt"
	"strings"
)

type OrderStatus string

// remember to add new statuses to validOrderStatuses
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.TrimSpace(s))
	for _, valid := range validOrderStatuses {
		if status == valid {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid order status: %q", s)
}

// OrderStatuses returns the valid statuses in lifecycle order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}
