package orders

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

var jsonNull = []byte("null")

type rawOrderRequest struct {
	CustomerName    json.RawMessage `json:"customer_name"`
	CustomerEmail   json.RawMessage `json:"customer_email"`
	CustomerPhone   json.RawMessage `json:"customer_phone"`
	CustomerAddress json.RawMessage `json:"customer_address"`
	Notes           json.RawMessage `json:"notes"`
	Items           json.RawMessage `json:"items"`
}

type rawOrderItem struct {
	ProductID json.RawMessage `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

// DecodeCreateOrderRequest decodes a request body field by field. A field of
// the wrong JSON type is recorded and reported by CreateOrder together with
// every other violation. The error is only for a body that is not a JSON
// object.
func DecodeCreateOrderRequest(body []byte) (CreateOrderRequest, error) {
	var (
		raw rawOrderRequest
		req CreateOrderRequest
	)
	if err := json.Unmarshal(body, &raw); err != nil {
		return req, err
	}

	var found problems
	decodeString(&found, "customer_name", raw.CustomerName, &req.CustomerName)
	decodeString(&found, "customer_email", raw.CustomerEmail, &req.CustomerEmail)
	decodeString(&found, "customer_phone", raw.CustomerPhone, &req.CustomerPhone)
	decodeString(&found, "customer_address", raw.CustomerAddress, &req.CustomerAddress)
	decodeString(&found, "notes", raw.Notes, &req.Notes)
	req.Items = decodeItems(&found, raw.Items)

	req.decodeErrors = found
	return req, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, jsonNull)
}

func decodeString(found *problems, path string, raw json.RawMessage, dst *string) {
	if isAbsent(raw) {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		found.add(path, "must be a string")
	}
}

func decodeItems(found *problems, raw json.RawMessage) []CreateOrderItemRequest {
	if isAbsent(raw) {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		found.add("items", "must be an array")
		return nil
	}

	items := make([]CreateOrderItemRequest, len(elems))
	for i, elem := range elems {
		path := fmt.Sprintf("items[%d]", i)
		var rawItem rawOrderItem
		if err := json.Unmarshal(elem, &rawItem); err != nil {
			found.add(path, "must be an object")
			continue
		}
		items[i].ProductID = decodeProductID(found, path+".product_id", rawItem.ProductID)
		items[i].Quantity = decodeQuantity(found, path+".quantity", rawItem.Quantity)
	}
	return items
}

func decodeProductID(found *problems, path string, raw json.RawMessage) int64 {
	if isAbsent(raw) {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		found.add(path, "must be an integer")
		return 0
	}
	id, err := n.Int64()
	if err != nil {
		found.add(path, "must be an integer")
		return 0
	}
	return id
}

// decodeQuantity accepts a JSON number or a numeric string.
func decodeQuantity(found *problems, path string, raw json.RawMessage) decimal.Decimal {
	if isAbsent(raw) {
		return decimal.Zero
	}
	var q decimal.Decimal
	if err := json.Unmarshal(raw, &q); err != nil {
		found.add(path, "must be a number")
		return decimal.Zero
	}
	return q
}
