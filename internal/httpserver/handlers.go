package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"ando-storefront/internal/domain"
	customersvc "ando-storefront/internal/service/customer"
	sessionsvc "ando-storefront/internal/service/session"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

type signupRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
}

func (h *handlers) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.deps.CustomerSvc.Signup(c.Request.Context(), customersvc.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": created})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) login(c *gin.Context) {
	sess := currentSession(c)
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := sess.Bridge.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customer":     result.Customer,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
		"expiresIn":    h.deps.CustomerSvc.AccessTTLSeconds(),
	})
}

func (h *handlers) getCart(c *gin.Context) {
	sess := currentSession(c)
	c.JSON(http.StatusOK, toCartResponse(sess.Cart.Snapshot(), true, nil))
}

type addItemRequest struct {
	ProductID      string `json:"productId" binding:"required"`
	Name           string `json:"name"`
	Size           string `json:"size"`
	Color          string `json:"color"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

func (h *handlers) addCartItem(c *gin.Context) {
	sess := currentSession(c)
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cart, err := sess.Cart.AddItem(c.Request.Context(), req.ProductID, req.Name, req.Size, req.Color, req.UnitPriceCents)
	h.writeCartMutation(c, cart, err)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) updateCartItem(c *gin.Context) {
	sess := currentSession(c)
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cart, err := sess.Cart.UpdateQuantity(c.Request.Context(), variantKeyParam(c), req.Quantity)
	h.writeCartMutation(c, cart, err)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	sess := currentSession(c)
	cart, err := sess.Cart.RemoveItem(c.Request.Context(), variantKeyParam(c))
	h.writeCartMutation(c, cart, err)
}

// variantKeyParam strips the leading slash the catch-all route keeps.
func variantKeyParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("variantKey"), "/")
}

func (h *handlers) clearCart(c *gin.Context) {
	sess := currentSession(c)
	cart, err := sess.Cart.Clear(c.Request.Context())
	h.writeCartMutation(c, cart, err)
}

// writeCartMutation answers 200 with persisted=false when only the
// persistence step failed; the in-memory mutation is never rolled back.
func (h *handlers) writeCartMutation(c *gin.Context, cart domain.Cart, err error) {
	if err != nil && !errors.Is(err, domain.ErrNetwork) {
		writeError(c, err)
		return
	}
	if err != nil {
		h.logger.Printf("cart persistence pending: %v", err)
	}
	c.JSON(http.StatusOK, toCartResponse(cart, err == nil, err))
}

type toggleFavoriteRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

func (h *handlers) toggleFavorite(c *gin.Context) {
	sess := currentSession(c)
	var req toggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	favorite, err := sess.Favorites.Toggle(c.Request.Context(), req.ProductID)
	if err != nil && !errors.Is(err, domain.ErrNetwork) {
		writeError(c, err)
		return
	}
	if err != nil {
		h.logger.Printf("favorites persistence pending: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{
		"productId":  req.ProductID,
		"isFavorite": favorite,
		"favorites":  sess.Favorites.List(),
		"persisted":  err == nil,
	})
}

func (h *handlers) listFavorites(c *gin.Context) {
	sess := currentSession(c)
	c.JSON(http.StatusOK, gin.H{"favorites": sess.Favorites.List()})
}

func (h *handlers) listDiscounts(c *gin.Context) {
	sess := currentSession(c)
	userID := sess.Bridge.UserID()
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	discounts, err := h.deps.DiscountRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]discountResponse, 0, len(discounts))
	for _, d := range discounts {
		out = append(out, toDiscountResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"discounts": out})
}

type promoRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *handlers) applyPromo(c *gin.Context) {
	sess := currentSession(c)
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := sess.Engine.ApplyPromo(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": p.Code, "percent": p.Percent})
}

func (h *handlers) removePromo(c *gin.Context) {
	sess := currentSession(c)
	sess.Engine.RemovePromo()
	c.Status(http.StatusNoContent)
}

type checkoutRequest struct {
	DeliveryFeeCents *int64 `json:"deliveryFeeCents"`
}

func (h *handlers) summarize(c *gin.Context) {
	sess := currentSession(c)
	req, ok := bindCheckoutRequest(c)
	if !ok {
		return
	}
	summary, err := sess.Engine.Summarize(c.Request.Context(), sess.Bridge.UserID(), sess.Cart.Snapshot(), h.deliveryFee(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handlers) completeOrder(c *gin.Context) {
	sess := currentSession(c)
	userID := sess.Bridge.UserID()
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	req, ok := bindCheckoutRequest(c)
	if !ok {
		return
	}
	order, err := sess.Engine.CompleteOrder(c.Request.Context(), userID, sess.Cart.Snapshot(), h.deliveryFee(req))
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err := sess.Cart.Clear(c.Request.Context()); err != nil {
		h.logger.Printf("clear cart after order %s: %v", order.ID, err)
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// bindCheckoutRequest reads the optional request body; an empty body means
// defaults.
func bindCheckoutRequest(c *gin.Context) (checkoutRequest, bool) {
	var req checkoutRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return req, false
	}
	return req, true
}

func (h *handlers) deliveryFee(req checkoutRequest) int64 {
	if req.DeliveryFeeCents != nil {
		return *req.DeliveryFeeCents
	}
	return h.deps.DeliveryFee
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, customersvc.ErrInvalidCredentials), errors.Is(err, customersvc.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sessionsvc.ErrLoginInFlight),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrExpired):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNetwork):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
