package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPizzaFromRequest(req NewPizzaRequest) Pizza {
	size := DefaultPizzaSize
	if req.Size != nil {
		size = *req.Size
	}

	return Pizza{
		Name:        deref(req.Name),
		Description: req.Description,
		Price:       deref(req.Price),
		Size:        size,
		Vegetarian:  req.Vegetarian,
		Spicy:       req.Spicy,
		Image:       req.Image,
	}
}

func newOrderFromRequest(req NewOrderRequest) Order {
	items := make([]OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		quantity := 1
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		items = append(items, OrderItem{
			PizzaID:  deref(item.PizzaID),
			Name:     deref(item.Name),
			Price:    deref(item.Price),
			Quantity: quantity,
		})
	}

	return Order{
		CustomerName: deref(req.CustomerName),
		Phone:        deref(req.Phone),
		Address:      deref(req.Address),
		Items:        items,
		Note:         req.Note,
		Total:        deref(req.Total),
	}
}

// pizzaResponseFromDocument tolerates partial documents. Only a missing
// identifier or an unusable price is fatal.
func pizzaResponseFromDocument(doc Document) (PizzaResponse, error) {
	id, err := documentID(doc)
	if err != nil {
		return PizzaResponse{}, err
	}

	price, err := coerceFloat(doc["price"])
	if err == nil && (math.IsNaN(price) || math.IsInf(price, 0)) {
		err = errors.New("is not a finite number")
	}
	if err != nil {
		return PizzaResponse{}, &MappingError{DocumentID: id, Field: "price", Reason: err.Error()}
	}

	return PizzaResponse{
		ID:          id,
		Name:        textOr(doc["name"], ""),
		Description: optionalText(doc["description"]),
		Price:       price,
		Size:        textOr(doc["size"], DefaultPizzaSize),
		Vegetarian:  truthy(doc["vegetarian"]),
		Spicy:       truthy(doc["spicy"]),
		Image:       optionalText(doc["image"]),
	}, nil
}

func documentID(doc Document) (string, error) {
	switch id := doc["_id"].(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	case nil:
		return "", &MappingError{DocumentID: "<unknown>", Field: "_id", Reason: "is missing"}
	default:
		return fmt.Sprint(id), nil
	}
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("is not numeric: %s", n)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("is not numeric: %q", n)
		}
		return f, nil
	case nil:
		return 0, errors.New("is missing")
	default:
		return 0, fmt.Errorf("has unsupported type %T", v)
	}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case int32:
		return b != 0
	case int64:
		return b != 0
	case int:
		return b != 0
	case float64:
		return b != 0
	case string:
		return b != ""
	case primitive.A:
		return len(b) > 0
	case primitive.M:
		return len(b) > 0
	case primitive.D:
		return len(b) > 0
	default:
		return true
	}
}

func optionalText(v any) *string {
	switch s := v.(type) {
	case nil:
		return nil
	case string:
		return &s
	default:
		text := fmt.Sprint(s)
		return &text
	}
}

func textOr(v any, fallback string) string {
	if text := optionalText(v); text != nil {
		return *text
	}
	return fallback
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
