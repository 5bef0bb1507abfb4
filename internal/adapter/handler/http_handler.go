package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/justclick/storefront/internal/core/domain"
	"github.com/justclick/storefront/internal/core/service"
)

// HTTPHandler is the presentation surface: it forwards user intents
// into the cart and checkout services and maps their errors to status
// codes. Message wording and layout belong to the client.
type HTTPHandler struct {
	catalog    *service.CatalogService
	cart       *service.CartService
	checkout   *service.CheckoutService
	challenges *service.ChallengeService
	log        *zap.Logger
}

func NewHTTPHandler(
	catalog *service.CatalogService,
	cart *service.CartService,
	checkout *service.CheckoutService,
	challenges *service.ChallengeService,
	log *zap.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		catalog:    catalog,
		cart:       cart,
		checkout:   checkout,
		challenges: challenges,
		log:        log,
	}
}

func (h *HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart/items", h.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{key}", h.SetQuantity).Methods(http.MethodPut)
	api.HandleFunc("/cart/items/{key}", h.RemoveItem).Methods(http.MethodDelete)
	api.HandleFunc("/captcha", h.NewChallenge).Methods(http.MethodGet)
	api.HandleFunc("/checkout", h.Checkout).Methods(http.MethodPost)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	Customer    domain.Customer `json:"customer"`
	ChallengeID string          `json:"challenge_id"`
	Answer      string          `json:"answer"`
}

type cartItemResponse struct {
	Key       string  `json:"key"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Variant   string  `json:"variant"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

type cartResponse struct {
	Items    []cartItemResponse `json:"items"`
	Count    int                `json:"count"`
	Subtotal float64            `json:"subtotal"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ProductID string `json:"product_id,omitempty"`
	Available int    `json:"available,omitempty"`
	Requested int    `json:"requested,omitempty"`
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"products": h.catalog.Products(),
		"fallback": h.catalog.Fallback(),
	})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.cart.Add(r.Context(), req.ProductID, req.Variant); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	key, err := domain.ParseCartKey(mux.Vars(r)["key"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed cart key"})
		return
	}
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.cart.SetQuantity(r.Context(), key, req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key, err := domain.ParseCartKey(mux.Vars(r)["key"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed cart key"})
		return
	}
	h.cart.Remove(r.Context(), key)
	writeJSON(w, http.StatusOK, h.cartView())
}

// NewChallenge issues a checkout challenge. The answer is returned so
// the client can draw it; the gate is client-rendered, not a secret.
func (h *HTTPHandler) NewChallenge(w http.ResponseWriter, r *http.Request) {
	ch, err := h.challenges.Issue(r.Context())
	if err != nil {
		h.log.Error("challenge issue failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "challenge unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"challenge_id": ch.ID,
		"text":         ch.Answer,
	})
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ok, err := h.challenges.Verify(r.Context(), req.ChallengeID, req.Answer)
	if err != nil {
		h.log.Error("challenge verify failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "challenge unavailable"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "challenge failed"})
		return
	}

	order, err := h.checkout.Submit(r.Context(), req.Customer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"order_id": order.ID,
		"total":    order.Total,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) cartView() cartResponse {
	items := h.cart.Items()
	resp := cartResponse{Items: make([]cartItemResponse, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, cartItemResponse{
			Key:       it.Key.String(),
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Image:     it.Product.Image,
			Variant:   it.Key.Variant,
			Quantity:  it.Quantity,
			LineTotal: it.Product.Price * float64(it.Quantity),
		})
		resp.Count += it.Quantity
		resp.Subtotal += it.Product.Price * float64(it.Quantity)
	}
	return resp
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:     "insufficient stock",
			ProductID: stockErr.ProductID,
			Available: stockErr.Available,
			Requested: stockErr.Requested,
		})
	case errors.Is(err, service.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "product not found"})
	case errors.Is(err, service.ErrVariantRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "variant selection required"})
	case errors.Is(err, service.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cart is empty"})
	case errors.Is(err, service.ErrRemoteUnavailable):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "order could not be placed, cart preserved"})
	default:
		h.log.Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
