package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rl1809/pos-cart/internal/core/domain"
	"github.com/rl1809/pos-cart/internal/core/pricing"
	"github.com/rl1809/pos-cart/internal/core/service"
)

const (
	idempotencyHeader = "Idempotency-Key"

	// nginx convention for a client that went away before the response
	statusClientClosedRequest = 499

	maxBodyBytes = 1 << 20
)

type HTTPHandler struct {
	cartService    *service.CartService
	catalogService *service.CatalogService
	logger         *zap.Logger
}

type AddLineHTTPRequest struct {
	ProductID string `json:"product_id"`
}

type SetQuantityHTTPRequest struct {
	Quantity *int `json:"quantity"`
}

type ProductView struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Display string  `json:"display"`
}

type LineView struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	LinePrice float64 `json:"line_price"`
	Display   string  `json:"display"`
}

type OfferView struct {
	ProductID   string  `json:"product_id"`
	Description string  `json:"description"`
	Savings     float64 `json:"savings"`
	Display     string  `json:"display"`
}

type TotalsDisplay struct {
	Subtotal     string `json:"subtotal"`
	TotalSavings string `json:"total_savings"`
	FinalTotal   string `json:"final_total"`
}

type CartView struct {
	ID           string        `json:"id"`
	Version      int           `json:"version"`
	ItemCount    int           `json:"item_count"`
	Lines        []LineView    `json:"lines"`
	Offers       []OfferView   `json:"offers"`
	Subtotal     float64       `json:"subtotal"`
	TotalSavings float64       `json:"total_savings"`
	FinalTotal   float64       `json:"final_total"`
	Display      TotalsDisplay `json:"display"`
}

type ErrorHTTPResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(cartService *service.CartService, catalogService *service.CatalogService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		cartService:    cartService,
		catalogService: catalogService,
		logger:         logger,
	}
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]ProductView, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductView(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.CreateCart(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCartView(cart))
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.GetCart(r.Context(), chi.URLParam(r, "cartID"))
	h.respondCart(w, r, cart, err)
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.ClearCart(r.Context(), chi.URLParam(r, "cartID"), requestID(r))
	h.respondCart(w, r, cart, err)
}

func (h *HTTPHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineHTTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "missing product_id"})
		return
	}

	cart, err := h.cartService.AddLine(r.Context(), chi.URLParam(r, "cartID"), req.ProductID, requestID(r))
	h.respondCart(w, r, cart, err)
}

func (h *HTTPHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityHTTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "missing quantity"})
		return
	}

	cart, err := h.cartService.SetQuantity(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"), *req.Quantity, requestID(r))
	h.respondCart(w, r, cart, err)
}

func (h *HTTPHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.RemoveLine(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"), requestID(r))
	h.respondCart(w, r, cart, err)
}

func (h *HTTPHandler) IncrementLine(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.IncrementLine(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"), requestID(r))
	h.respondCart(w, r, cart, err)
}

func (h *HTTPHandler) DecrementLine(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.DecrementLine(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"), requestID(r))
	h.respondCart(w, r, cart, err)
}

func (h *HTTPHandler) respondCart(w http.ResponseWriter, r *http.Request, cart *domain.Cart, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(cart))
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := httpStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, ErrorHTTPResponse{Error: message})
}

func httpStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrCorruptCart):
		return http.StatusInternalServerError, "internal error"
	case errors.Is(err, domain.ErrCartNotFound):
		return http.StatusNotFound, "cart not found"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, domain.ErrLineNotFound):
		return http.StatusNotFound, "product not in cart"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid quantity"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request"
	case errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, "cart was modified concurrently"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, "request cancelled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// decodeBody writes the error response itself and reports whether the
// handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorHTTPResponse{Error: "request body too large"})
	} else {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "invalid request body"})
	}
	return false
}

func requestID(r *http.Request) string {
	return r.Header.Get(idempotencyHeader)
}

func toProductView(p domain.Product) ProductView {
	return ProductView{
		ID:      p.ID,
		Name:    p.Name,
		Price:   p.Price,
		Display: pricing.FormatPrice(p.Price),
	}
}

func toCartView(c *domain.Cart) CartView {
	resp := CartView{
		ID:           c.ID,
		Version:      c.Version,
		ItemCount:    c.ItemCount(),
		Lines:        make([]LineView, 0, len(c.Lines)),
		Offers:       make([]OfferView, 0, len(c.Offers)),
		Subtotal:     c.Subtotal,
		TotalSavings: c.TotalSavings,
		FinalTotal:   c.FinalTotal,
		Display: TotalsDisplay{
			Subtotal:     pricing.FormatPrice(c.Subtotal),
			TotalSavings: pricing.FormatPrice(c.TotalSavings),
			FinalTotal:   pricing.FormatPrice(c.FinalTotal),
		},
	}
	for _, l := range c.Lines {
		resp.Lines = append(resp.Lines, LineView{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
			LinePrice: l.LinePrice,
			Display:   pricing.FormatPrice(l.LinePrice),
		})
	}
	for _, o := range c.Offers {
		resp.Offers = append(resp.Offers, OfferView{
			ProductID:   o.ProductID,
			Description: o.Description,
			Savings:     o.Savings,
			Display:     pricing.FormatPrice(o.Savings),
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
