package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/services"
	"storefront/internal/storefront"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pricePrinter = message.NewPrinter(language.Spanish)

func formatPrice(p int64) string {
	return pricePrinter.Sprintf("$%d", p)
}

var pageTemplate = template.Must(
	template.New("").Funcs(template.FuncMap{"price": formatPrice}).ParseFS(templateFS, "templates/*.tmpl"),
)

func (h *Handler) redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) Index(c *gin.Context) {
	v, err := h.service.Page(c.Request.Context(), sessionID(c))
	if err != nil {
		h.logger.Error("render page", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.HTML(http.StatusOK, "index.tmpl", v)
}

func (h *Handler) AddToCartForm(c *gin.Context) {
	id, err := strconv.ParseInt(c.PostForm("product_id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid product")
		return
	}
	if _, err := h.service.AddToCart(c.Request.Context(), sessionID(c), id); err != nil {
		c.String(statusFor(err), err.Error())
		return
	}
	h.redirectHome(c)
}

func (h *Handler) RemoveFromCartForm(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid index")
		return
	}
	if _, err := h.service.RemoveFromCart(c.Request.Context(), sessionID(c), index); err != nil {
		c.String(statusFor(err), err.Error())
		return
	}
	h.redirectHome(c)
}

func (h *Handler) OpenCheckoutForm(c *gin.Context) {
	if _, err := h.service.OpenCheckout(c.Request.Context(), sessionID(c)); err != nil {
		c.String(statusFor(err), err.Error())
		return
	}
	h.redirectHome(c)
}

// ConfirmForm stores the submitted fields and confirms the order. The outcome is
// shown on the next page load through the session notice.
func (h *Handler) ConfirmForm(c *gin.Context) {
	var f checkoutForm
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}
	ctx := c.Request.Context()
	sid := sessionID(c)

	if _, err := h.service.SetForm(ctx, sid, domain.BuyerForm{Name: f.Name, Email: f.Email, Address: f.Address}); err != nil {
		c.String(statusFor(err), err.Error())
		return
	}

	_, err := h.service.SubmitOrder(ctx, sid)
	switch {
	case err == nil,
		errors.Is(err, services.ErrSubmissionFailed),
		errors.Is(err, services.ErrInvalidForm),
		errors.Is(err, storefront.ErrSubmissionInFlight),
		errors.Is(err, storefront.ErrCheckoutClosed):
		h.redirectHome(c)
	default:
		h.logger.Error("confirm order", zap.String("session_id", sid), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
	}
}
