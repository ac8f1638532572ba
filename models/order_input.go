package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// OrderItemInput is one requested line of a new order
type OrderItemInput struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Notes     string `json:"notes"`
}

// OrderInput is the normalised body of POST /orders
type OrderInput struct {
	CustomerID    *string          `json:"customer_id" binding:"omitempty,uuid"`
	TableNumber   string           `json:"table_number"`
	PaymentMethod string           `json:"payment_method" binding:"omitempty,oneof=cash card qris transfer"`
	Notes         string           `json:"notes"`
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// FieldAlias maps legacy spellings onto one canonical field
type FieldAlias struct {
	Canonical string
	Aliases   []string
}

// OrderFieldAliases lists every accepted spelling of the top-level order fields
var OrderFieldAliases = []FieldAlias{
	{Canonical: "customer_id", Aliases: []string{"customerId", "customerID", "customer", "client_id", "clientId"}},
	{Canonical: "table_number", Aliases: []string{"tableNumber", "table", "table_no", "tableNo"}},
	{Canonical: "payment_method", Aliases: []string{"paymentMethod", "payment", "payment_type", "paymentType", "method"}},
	{Canonical: "notes", Aliases: []string{"note", "comment", "comments", "remarks"}},
	{Canonical: "items", Aliases: []string{"orderItems", "order_items", "products", "cart", "lines"}},
}

// OrderItemFieldAliases lists every accepted spelling of the order line fields
var OrderItemFieldAliases = []FieldAlias{
	{Canonical: "product_id", Aliases: []string{"productId", "productID", "product", "id"}},
	{Canonical: "quantity", Aliases: []string{"qty", "count", "amount"}},
	{Canonical: "notes", Aliases: []string{"note", "comment", "remarks"}},
}

// fields whose legacy payloads send a number where a string is expected, or the reverse
var (
	numberAsString = map[string]bool{"table_number": true}
	stringAsNumber = map[string]bool{"quantity": true}
	objectWithID   = map[string]bool{"customer_id": true, "product_id": true}
)

// NormalizeFields rewrites raw onto canonical keys. The canonical spelling
// wins over any alias; among aliases the first one listed wins. Keys not
// named in aliases are dropped.
func NormalizeFields(raw map[string]json.RawMessage, aliases []FieldAlias) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(aliases))
	for _, field := range aliases {
		value, ok := raw[field.Canonical]
		if !ok {
			for _, alias := range field.Aliases {
				if value, ok = raw[alias]; ok {
					break
				}
			}
		}
		if !ok || isNull(value) {
			continue
		}

		coerced, err := coerce(field.Canonical, value)
		if err != nil {
			return nil, err
		}
		out[field.Canonical] = coerced
	}
	return out, nil
}

// DecodeOrderInput decodes an order body in any accepted legacy shape
func DecodeOrderInput(body []byte) (*OrderInput, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	fields, err := NormalizeFields(raw, OrderFieldAliases)
	if err != nil {
		return nil, err
	}

	if rawItems, ok := fields["items"]; ok {
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(rawItems, &items); err != nil {
			return nil, fmt.Errorf("items must be a list of objects: %w", err)
		}

		normalized := make([]map[string]json.RawMessage, 0, len(items))
		for i, item := range items {
			n, err := NormalizeFields(item, OrderItemFieldAliases)
			if err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, err)
			}
			normalized = append(normalized, n)
		}

		encoded, err := json.Marshal(normalized)
		if err != nil {
			return nil, err
		}
		fields["items"] = encoded
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	var input OrderInput
	if err := json.Unmarshal(encoded, &input); err != nil {
		return nil, fmt.Errorf("invalid order payload: %w", err)
	}
	return &input, nil
}

func coerce(field string, value json.RawMessage) (json.RawMessage, error) {
	if objectWithID[field] && bytes.HasPrefix(bytes.TrimSpace(value), []byte("{")) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(value, &obj); err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		id, ok := obj["id"]
		if !ok {
			return nil, fmt.Errorf("%s: object has no id", field)
		}
		value = id
	}

	if numberAsString[field] {
		var n json.Number
		if err := json.Unmarshal(value, &n); err == nil && !bytes.HasPrefix(bytes.TrimSpace(value), []byte(`"`)) {
			return json.Marshal(n.String())
		}
	}

	if stringAsNumber[field] {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a number", field, s)
			}
			return json.Marshal(n)
		}
	}

	return value, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
