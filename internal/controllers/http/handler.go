package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/services"
	"storefront/internal/storefront"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service    *services.StorefrontService
	metrics    *metrics.Registry
	logger     *zap.Logger
	sessionTTL time.Duration
}

func NewHandler(s *services.StorefrontService, m *metrics.Registry, logger *zap.Logger, sessionTTL time.Duration) *Handler {
	return &Handler{service: s, metrics: m, logger: logger, sessionTTL: sessionTTL}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(pageTemplate)
	r.Use(requestLogger(h.logger))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	site := r.Group("/", sessionMiddleware(h.sessionTTL))
	site.GET("/", h.Index)
	site.POST("/cart/add", h.AddToCartForm)
	site.POST("/cart/remove/:index", h.RemoveFromCartForm)
	site.POST("/checkout/open", h.OpenCheckoutForm)
	site.POST("/checkout/confirm", h.ConfirmForm)

	api := r.Group("/api", sessionMiddleware(h.sessionTTL))
	api.GET("/products", h.ListProducts)
	api.GET("/cart", h.GetCart)
	api.POST("/cart/items", h.AddToCart)
	api.DELETE("/cart/items/:index", h.RemoveFromCart)
	api.POST("/checkout", h.OpenCheckout)
	api.PUT("/checkout/form", h.SetField)
	api.POST("/orders", h.CreateOrder)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownProduct), errors.Is(err, domain.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidForm):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storefront.ErrCheckoutClosed), errors.Is(err, storefront.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(err, services.ErrSubmissionFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusBadGateway:
		// The sink's cause stays in the logs.
		msg = services.ErrSubmissionFailed.Error()
	case http.StatusInternalServerError:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func parseIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return 0, false
	}
	return index, true
}

func (h *Handler) ListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Products())
}

func (h *Handler) GetCart(c *gin.Context) {
	v, err := h.service.Cart(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.service.AddToCart(c.Request.Context(), sessionID(c), req.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	v, err := h.service.RemoveFromCart(c.Request.Context(), sessionID(c), index)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) OpenCheckout(c *gin.Context) {
	v, err := h.service.OpenCheckout(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) SetField(c *gin.Context) {
	var req SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	field, err := domain.ParseField(req.Field)
	if err != nil {
		h.respondError(c, err)
		return
	}
	v, err := h.service.SetField(c.Request.Context(), sessionID(c), field, req.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	order, err := h.service.SubmitOrder(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateOrderResponse{ID: order.ID, Total: order.Total, CreatedAt: order.CreatedAt})
}
