package models

import "time"

// EmailFailure is an append-only audit row written when an order
// notification could not be delivered.
type EmailFailure struct {
	ID           int64     `bson:"_id" json:"id"`
	OrderID      int64     `bson:"orderId" json:"order_id"`
	Email        string    `bson:"email" json:"email"`
	ErrorMessage string    `bson:"errorMessage" json:"error_message"`
	CreatedAt    time.Time `bson:"createdAt" json:"created_at"`
}
