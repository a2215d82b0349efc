package main

import (
	"time"
)

// DefaultPizzaSize is the size label stored when a new pizza does not name one.
const DefaultPizzaSize = "33 cm"

const (
	pizzaCollection = "pizza"
	orderCollection = "order"
)

type NewPizzaRequest struct {
	Name        *string  `json:"name" validate:"required,min=1"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Size        *string  `json:"size"`
	Vegetarian  bool     `json:"vegetarian"`
	Spicy       bool     `json:"spicy"`
	Image       *string  `json:"image"`
}

type NewOrderItemRequest struct {
	PizzaID  *string  `json:"pizza_id" validate:"required"`
	Name     *string  `json:"name" validate:"required"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Quantity *int     `json:"quantity" validate:"omitempty,min=1"`
}

type NewOrderRequest struct {
	CustomerName *string               `json:"customer_name" validate:"required,min=1"`
	Phone        *string               `json:"phone" validate:"required"`
	Address      *string               `json:"address" validate:"required"`
	Items        []NewOrderItemRequest `json:"items" validate:"required,dive"`
	Note         *string               `json:"note"`
	Total        *float64              `json:"total" validate:"required,gte=0"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PizzaResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Size        string  `json:"size"`
	Vegetarian  bool    `json:"vegetarian"`
	Spicy       bool    `json:"spicy"`
	Image       *string `json:"image"`
}

type DiagnosticResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      *string  `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Pizza is the menu item as stored in the "pizza" collection.
type Pizza struct {
	Name        string  `bson:"name"`
	Description *string `bson:"description"`
	Price       float64 `bson:"price"`
	Size        string  `bson:"size"`
	Vegetarian  bool    `bson:"vegetarian"`
	Spicy       bool    `bson:"spicy"`
	Image       *string `bson:"image"`
}

// OrderItem is a point-in-time copy of a pizza; it is never re-read from the menu.
type OrderItem struct {
	PizzaID  string  `bson:"pizza_id" json:"pizza_id"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
}

// Order is stored as-is in the "order" collection. Total is whatever the client computed.
type Order struct {
	CustomerName string      `bson:"customer_name"`
	Phone        string      `bson:"phone"`
	Address      string      `bson:"address"`
	Items        []OrderItem `bson:"items"`
	Note         *string     `bson:"note"`
	Total        float64     `bson:"total"`
}

type OrderPlacedEvent struct {
	OrderID      string      `json:"order_id"`
	CustomerName string      `json:"customer_name"`
	Address      string      `json:"address"`
	Items        []OrderItem `json:"items"`
	Note         *string     `json:"note,omitempty"`
	Total        float64     `json:"total"`
	PlacedAt     time.Time   `json:"placed_at"`
}
