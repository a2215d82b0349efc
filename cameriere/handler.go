package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const greeting = "Pizzeria backend beží"

// maxDiagnosticCollections caps how many collection names GET /test reports.
const maxDiagnosticCollections = 10

var (
	tracer = otel.Tracer("cameriere")
	meter  = otel.Meter("cameriere")
)

type MainHandler struct {
	settings       *Settings
	store          DocumentStore
	orderPublisher OrderPublisher
	health         *healthgo.Health
	pizzasCreated  metric.Int64Counter
	ordersPlaced   metric.Int64Counter
	now            func() time.Time
}

func NewMainHandler(
	e *echo.Echo,
	settings *Settings,
	store DocumentStore,
	orderPublisher OrderPublisher,
	health *healthgo.Health,
) (*MainHandler, error) {
	pizzasCreated, err := meter.Int64Counter(
		"cameriere.pizzas.created",
		metric.WithDescription("Number of pizzas added to the menu"),
		metric.WithUnit("{pizza}"),
	)
	if err != nil {
		return nil, err
	}

	ordersPlaced, err := meter.Int64Counter(
		"cameriere.orders.placed",
		metric.WithDescription("Number of orders persisted"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	e.HideBanner = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.HTTP.CORS.Origins,
		AllowMethods: settings.HTTP.CORS.Methods,
		AllowHeaders: settings.HTTP.CORS.Headers,
	}))
	e.Use(otelecho.Middleware(settings.App.Name,
		otelecho.WithEchoMetricAttributeFn(func(c echo.Context) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("handler.path", c.Path()),
				attribute.String("handler.method", c.Request().Method),
			}
		}),
	))

	handler := &MainHandler{
		settings:       settings,
		store:          store,
		orderPublisher: orderPublisher,
		health:         health,
		pizzasCreated:  pizzasCreated,
		ordersPlaced:   ordersPlaced,
		now:            time.Now,
	}

	e.GET("/", handler.Root)
	e.GET("/test", handler.Diagnose)
	e.GET("/healthz", handler.HealthCheck)

	api := e.Group(settings.HTTP.Prefix)
	api.GET("/pizzas", handler.ListPizzas)
	api.POST("/pizzas", handler.CreatePizza)
	api.POST("/orders", handler.PlaceOrder)

	return handler, nil
}

// Root godoc
//
// @Summary Greeting
// @Tags meta
// @Produce json
// @Success 200 {object} MessageResponse
// @Router / [get]
func (h *MainHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: greeting})
}

// ListPizzas godoc
//
// @Summary List the menu
// @Tags menu
// @Produce json
// @Success 200 {array} PizzaResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/pizzas [get]
func (h *MainHandler) ListPizzas(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "MainHandler.ListPizzas")
	defer span.End()

	docs, err := h.store.List(ctx, pizzaCollection)
	if err != nil {
		return h.respondError(ctx, c, span, err)
	}

	pizzas := make([]PizzaResponse, 0, len(docs))
	for _, doc := range docs {
		pizza, err := pizzaResponseFromDocument(doc)
		if err != nil {
			return h.respondError(ctx, c, span, err)
		}
		pizzas = append(pizzas, pizza)
	}

	span.SetAttributes(attribute.Int("menu.size", len(pizzas)))
	return c.JSON(http.StatusOK, pizzas)
}

// CreatePizza godoc
//
// @Summary Add a pizza to the menu
// @Tags menu
// @Accept json
// @Produce json
// @Param pizza body NewPizzaRequest true "New pizza"
// @Success 200 {object} CreatedResponse
// @Failure 422 {object} ValidationError
// @Failure 500 {object} ErrorResponse
// @Router /api/pizzas [post]
func (h *MainHandler) CreatePizza(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "MainHandler.CreatePizza")
	defer span.End()

	var req NewPizzaRequest
	if err := decodeRequest(c, &req); err != nil {
		return h.respondError(ctx, c, span, err)
	}

	pizza := newPizzaFromRequest(req)
	id, err := h.store.Insert(ctx, pizzaCollection, pizza)
	if err != nil {
		return h.respondError(ctx, c, span, err)
	}

	h.pizzasCreated.Add(ctx, 1)
	span.SetAttributes(attribute.String("forno.pizzaid", id))
	slog.InfoContext(ctx, "pizza added to the menu", slog.String("pizza-id", id), slog.String("name", pizza.Name))

	return c.JSON(http.StatusOK, CreatedResponse{ID: id})
}

// PlaceOrder godoc
//
// @Summary Place an order
// @Tags order
// @Accept json
// @Produce json
// @Param order body NewOrderRequest true "New order"
// @Success 200 {object} CreatedResponse
// @Failure 422 {object} ValidationError
// @Failure 500 {object} ErrorResponse
// @Router /api/orders [post]
func (h *MainHandler) PlaceOrder(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "MainHandler.PlaceOrder")
	defer span.End()

	var req NewOrderRequest
	if err := decodeRequest(c, &req); err != nil {
		return h.respondError(ctx, c, span, err)
	}

	order := newOrderFromRequest(req)
	id, err := h.store.Insert(ctx, orderCollection, order)
	if err != nil {
		return h.respondError(ctx, c, span, err)
	}

	h.ordersPlaced.Add(ctx, 1)
	span.SetAttributes(
		attribute.String("forno.orderid", id),
		attribute.Int("order.items", len(order.Items)),
	)
	slog.InfoContext(ctx, "order placed", slog.String("order-id", id), slog.Float64("total", order.Total))

	// The order is already stored; a failed announcement does not undo it.
	err = h.orderPublisher.PubOrderPlaced(ctx, OrderPlacedEvent{
		OrderID:      id,
		CustomerName: order.CustomerName,
		Address:      order.Address,
		Items:        order.Items,
		Note:         order.Note,
		Total:        order.Total,
		PlacedAt:     h.now().UTC(),
	})
	if err != nil {
		slog.WarnContext(ctx, "order stored but not announced", slog.String("order-id", id), slog.Any("err", err))
	}

	return c.JSON(http.StatusOK, CreatedResponse{ID: id})
}

// Diagnose godoc
//
// @Summary Report backend and database status
// @Tags meta
// @Produce json
// @Success 200 {object} DiagnosticResponse
// @Router /test [get]
func (h *MainHandler) Diagnose(c echo.Context) error {
	return c.JSON(http.StatusOK, h.diagnose(c.Request().Context()))
}

// diagnose never fails; every fault ends up in the Database status string.
func (h *MainHandler) diagnose(ctx context.Context) (resp DiagnosticResponse) {
	ctx, span := tracer.Start(ctx, "MainHandler.diagnose")
	defer span.End()

	resp = DiagnosticResponse{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "diagnostic check panicked", slog.Any("panic", r))
			resp.Database = "❌ Error: " + truncate(fmt.Sprint(r), 50)
		}
	}()

	if h.store == nil || !h.store.Initialized() {
		resp.Database = "⚠️  Available but not initialized"
		return resp
	}

	resp.Database = "✅ Available"
	databaseURL := "❌ Not Set"
	if h.settings.Mongo.URI != "" {
		databaseURL = "✅ Set"
	}
	resp.DatabaseURL = &databaseURL

	databaseName := h.store.Name()
	if databaseName == "" {
		databaseName = "✅ Connected"
	}
	resp.DatabaseName = &databaseName
	resp.ConnectionStatus = "Connected"

	names, err := h.store.CollectionNames(ctx)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "failed to list collections", slog.Any("err", err))
		resp.Database = "⚠️  Connected but Error: " + truncate(err.Error(), 50)
		return resp
	}

	if len(names) > maxDiagnosticCollections {
		names = names[:maxDiagnosticCollections]
	}
	if names != nil {
		resp.Collections = names
	}
	resp.Database = "✅ Connected & Working"

	return resp
}

// HealthCheck godoc
//
// @Summary Check the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} healthgo.Check
// @Failure 503 {object} healthgo.Check
// @Router /healthz [get]
func (h *MainHandler) HealthCheck(c echo.Context) error {
	check := h.health.Measure(c.Request().Context())

	statusCode := http.StatusOK
	if check.Status != healthgo.StatusOK {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, check)
}

func (h *MainHandler) respondError(ctx context.Context, c echo.Context, span trace.Span, err error) error {
	var (
		validationErr *ValidationError
		storeErr      *StoreError
		mappingErr    *MappingError
	)

	switch {
	case errors.As(err, &validationErr):
		slog.InfoContext(ctx, "rejected invalid request", slog.Any("err", err))
		return c.JSON(http.StatusUnprocessableEntity, validationErr)
	case errors.As(err, &storeErr):
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "request failed on the document store", slog.Any("err", err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "document store unavailable"})
	case errors.As(err, &mappingErr):
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "stored document is malformed", slog.Any("err", err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "stored data is malformed"})
	default:
		span.RecordError(err)
		return err
	}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
