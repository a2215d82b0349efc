package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr[T any](v T) *T {
	return &v
}

func TestPizzaResponseFromDocument(t *testing.T) {
	oid, err := primitive.ObjectIDFromHex("65f1c0ffee0000000000beef")
	require.NoError(t, err)
	decimalPrice, err := primitive.ParseDecimal128("12.40")
	require.NoError(t, err)

	tests := []struct {
		name string
		doc  Document
		want PizzaResponse
	}{
		{
			name: "complete document",
			doc: Document{
				"_id": oid, "name": "Margherita", "description": "classic", "price": 7.5,
				"size": "40 cm", "vegetarian": true, "spicy": false, "image": "m.png",
			},
			want: PizzaResponse{
				ID: "65f1c0ffee0000000000beef", Name: "Margherita", Description: ptr("classic"), Price: 7.5,
				Size: "40 cm", Vegetarian: true, Spicy: false, Image: ptr("m.png"),
			},
		},
		{
			name: "legacy document with integer price and no flags",
			doc:  Document{"_id": oid, "name": "Funghi", "price": int64(8)},
			want: PizzaResponse{ID: "65f1c0ffee0000000000beef", Name: "Funghi", Price: 8, Size: DefaultPizzaSize},
		},
		{
			name: "null optional text",
			doc:  Document{"_id": oid, "name": "Funghi", "price": 8.0, "description": nil, "image": nil},
			want: PizzaResponse{ID: "65f1c0ffee0000000000beef", Name: "Funghi", Price: 8, Size: DefaultPizzaSize},
		},
		{
			name: "string identifier and decimal price",
			doc:  Document{"_id": "seed-1", "name": "Quattro", "price": decimalPrice},
			want: PizzaResponse{ID: "seed-1", Name: "Quattro", Price: 12.4, Size: DefaultPizzaSize},
		},
		{
			name: "numeric text price and truthy flags",
			doc:  Document{"_id": oid, "price": " 6.90 ", "vegetarian": int32(1), "spicy": "yes"},
			want: PizzaResponse{ID: "65f1c0ffee0000000000beef", Price: 6.9, Size: DefaultPizzaSize, Vegetarian: true, Spicy: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pizzaResponseFromDocument(tt.doc)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPizzaResponseFromDocumentFailures(t *testing.T) {
	tests := []struct {
		name  string
		doc   Document
		field string
	}{
		{name: "missing identifier", doc: Document{"name": "Funghi", "price": 8.0}, field: "_id"},
		{name: "missing price", doc: Document{"_id": "x", "name": "Funghi"}, field: "price"},
		{name: "null price", doc: Document{"_id": "x", "price": nil}, field: "price"},
		{name: "text price", doc: Document{"_id": "x", "price": "cheap"}, field: "price"},
		{name: "boolean price", doc: Document{"_id": "x", "price": true}, field: "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pizzaResponseFromDocument(tt.doc)

			var mappingErr *MappingError
			require.ErrorAs(t, err, &mappingErr)
			assert.Equal(t, tt.field, mappingErr.Field)
		})
	}
}

func TestNewPizzaFromRequestAppliesDefaults(t *testing.T) {
	pizza := newPizzaFromRequest(NewPizzaRequest{Name: ptr("Margherita"), Price: ptr(7.5)})

	assert.Equal(t, Pizza{Name: "Margherita", Price: 7.5, Size: DefaultPizzaSize}, pizza)
}

func TestNewOrderFromRequestCopiesItems(t *testing.T) {
	req := NewOrderRequest{
		CustomerName: ptr("Jana"),
		Phone:        ptr("0900000000"),
		Address:      ptr("Hlavna 1"),
		Items: []NewOrderItemRequest{
			{PizzaID: ptr("a"), Name: ptr("Margherita"), Price: ptr(7.5)},
			{PizzaID: ptr("b"), Name: ptr("Diavola"), Price: ptr(9.0), Quantity: ptr(3)},
		},
		Total: ptr(34.5),
	}

	order := newOrderFromRequest(req)

	assert.Equal(t, Order{
		CustomerName: "Jana",
		Phone:        "0900000000",
		Address:      "Hlavna 1",
		Items: []OrderItem{
			{PizzaID: "a", Name: "Margherita", Price: 7.5, Quantity: 1},
			{PizzaID: "b", Name: "Diavola", Price: 9, Quantity: 3},
		},
		Total: 34.5,
	}, order)
}

func TestTruthy(t *testing.T) {
	assert.False(t, truthy(nil))
	assert.False(t, truthy(false))
	assert.False(t, truthy(int32(0)))
	assert.False(t, truthy(""))
	assert.False(t, truthy(primitive.A{}))
	assert.True(t, truthy(true))
	assert.True(t, truthy(int64(2)))
	assert.True(t, truthy(0.5))
	assert.True(t, truthy("false"))
	assert.True(t, truthy(primitive.NewObjectID()))
}
