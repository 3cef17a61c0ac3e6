package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/watchworks/storefront/internal/cards"
	"github.com/watchworks/storefront/internal/cart"
	"github.com/watchworks/storefront/internal/catalog"
	"github.com/watchworks/storefront/internal/chat"
	"github.com/watchworks/storefront/internal/checkout"
	"github.com/watchworks/storefront/internal/domain"
	"github.com/watchworks/storefront/internal/identity"
	"github.com/watchworks/storefront/internal/media"
	"github.com/watchworks/storefront/internal/orders"
)

// Handler handles every storefront HTTP request.
type Handler struct {
	catalog  *catalog.Service
	cart     *cart.Service
	cards    *cards.Service
	checkout checkout.Orchestrator
	orders   orders.Repository
	chat     *chat.Client    // nil-safe: endpoint replies 503 if nil
	media    *media.Uploader // nil-safe: endpoint replies 503 if nil
}

func NewHandler(
	cat *catalog.Service,
	crt *cart.Service,
	cds *cards.Service,
	co checkout.Orchestrator,
	ord orders.Repository,
	ch *chat.Client,
	md *media.Uploader,
) *Handler {
	return &Handler{
		catalog:  cat,
		cart:     crt,
		cards:    cds,
		checkout: co,
		orders:   ord,
		chat:     ch,
		media:    md,
	}
}

// ── Catalog ──────────────────────────────────────────────────────────────

func (h *Handler) ListWatches(w http.ResponseWriter, r *http.Request) {
	watches, err := h.catalog.List(r.Context())
	if err != nil {
		h.internal(w, r, err, "Failed to fetch watches")
		return
	}
	writeJSON(w, http.StatusOK, watches)
}

func (h *Handler) GetWatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	watch, err := h.catalog.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Watch not found")
		return
	}
	if err != nil {
		h.internal(w, r, err, "Failed to fetch watch")
		return
	}
	writeJSON(w, http.StatusOK, watch)
}

// ── Admin catalog ────────────────────────────────────────────────────────

func (h *Handler) AdminListWatches(w http.ResponseWriter, r *http.Request) {
	watches, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.internal(w, r, err, "Failed to fetch watches")
		return
	}
	writeJSON(w, http.StatusOK, watches)
}

func (h *Handler) AdminCreateWatch(w http.ResponseWriter, r *http.Request) {
	var req WatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	watch, err := h.catalog.Create(r.Context(), catalog.NewWatch{
		Brand:       req.Brand,
		Model:       req.Model,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if errors.Is(err, domain.ErrInvalidArgument) {
		writeError(w, http.StatusBadRequest, "Brand, model and a non-negative price are required")
		return
	}
	if err != nil {
		h.internal(w, r, err, "Failed to add watch")
		return
	}
	writeJSON(w, http.StatusCreated, watch)
}

func (h *Handler) AdminUpdateWatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req WatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	watch, err := h.catalog.Update(r.Context(), id, catalog.NewWatch{
		Brand:       req.Brand,
		Model:       req.Model,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}, req.Discontinued)
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "Brand, model and a non-negative price are required")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Watch not found")
	case err != nil:
		h.internal(w, r, err, "Failed to update watch")
	default:
		writeJSON(w, http.StatusOK, watch)
	}
}

func (h *Handler) AdminDiscontinueWatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req DiscontinueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	watch, err := h.catalog.SetDiscontinued(r.Context(), id, req.Discontinued)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Watch not found")
		return
	}
	if err != nil {
		h.internal(w, r, err, "Failed to update status")
		return
	}
	writeJSON(w, http.StatusOK, watch)
}

func (h *Handler) AdminUpdateImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	watch, err := h.catalog.UpdateImage(r.Context(), id, req.ImageURL)
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "Image URL is required")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Watch not found")
	case err != nil:
		h.internal(w, r, err, "Failed to update image")
	default:
		writeJSON(w, http.StatusOK, watch)
	}
}

func (h *Handler) AdminDeleteWatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	err := h.catalog.Delete(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Watch not found")
		return
	}
	if err != nil {
		h.internal(w, r, err, "Failed to delete watch")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Watch deleted"})
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.media == nil {
		writeError(w, http.StatusServiceUnavailable, "Image upload is not configured")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	url, err := h.media.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.internal(w, r, err, "Failed to upload image")
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: url})
}

// ── Cart ─────────────────────────────────────────────────────────────────

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.Items(r.Context(), username(r))
	if err != nil {
		h.internal(w, r, err, "Failed to fetch cart")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	line, err := h.cart.Add(r.Context(), username(r), req.ProductID, quantity)
	if errors.Is(err, domain.ErrInvalidArgument) {
		writeError(w, http.StatusBadRequest, "Product ID is required")
		return
	}
	if err != nil {
		h.internal(w, r, err, "Failed to add item to cart")
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *Handler) IncreaseCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	line, err := h.cart.Increase(r.Context(), username(r), productID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}
	if err != nil {
		h.internal(w, r, err, "Failed to increase quantity")
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *Handler) DecreaseCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	line, err := h.cart.Decrease(r.Context(), username(r), productID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}
	if err != nil {
		h.internal(w, r, err, "Failed to decrease quantity")
		return
	}

	if line.Quantity == 0 {
		writeJSON(w, http.StatusOK, RemovedResponse{Message: "Item removed from cart", Quantity: 0})
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	err := h.cart.Remove(r.Context(), username(r), productID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}
	if err != nil {
		h.internal(w, r, err, "Failed to remove item")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Item removed"})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), username(r)); err != nil {
		h.internal(w, r, err, "Failed to clear cart")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Cart cleared"})
}

// ── Cards ────────────────────────────────────────────────────────────────

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	list, err := h.cards.ListForUser(r.Context(), username(r))
	if err != nil {
		h.internal(w, r, err, "Failed to fetch cards")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.cards.Add(r.Context(), username(r), cards.NewCard{
		CardNumber:     req.CardNumber,
		CardholderName: req.CardholderName,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		CVV:            req.CVV,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, invalidArgumentMessage(err))
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "Card already saved")
	case err != nil:
		h.internal(w, r, err, "Failed to add card")
	default:
		writeJSON(w, http.StatusCreated, card)
	}
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.cards.Delete(r.Context(), username(r), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Card not found")
		return
	}
	if err != nil {
		h.internal(w, r, err, "Failed to delete card")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Card deleted"})
}

// ── Checkout & order history ─────────────────────────────────────────────

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]checkout.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, checkout.LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	result, err := h.checkout.Checkout(r.Context(), username(r), checkout.Request{
		CardID:   req.CardID,
		Items:    items,
		Subtotal: req.Subtotal,
		Tax:      req.Tax,
		Shipping: req.Shipping,
		Total:    req.Total,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "Missing required checkout information")
	case errors.Is(err, domain.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "Card not found or access denied")
	case err != nil:
		h.internal(w, r, err, "Failed to process checkout")
	default:
		writeJSON(w, http.StatusOK, CheckoutResponse{
			Success: true,
			OrderID: result.OrderID,
			Message: "Order placed successfully",
		})
	}
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListForUser(r.Context(), username(r))
	if err != nil {
		h.internal(w, r, err, "Failed to fetch orders")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ── Chat ─────────────────────────────────────────────────────────────────

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "Chat is not configured")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.chat.Send(r.Context(), req.Message)
	if err != nil {
		h.internal(w, r, err, "Chat service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// ── Helpers ──────────────────────────────────────────────────────────────

// username returns the identity the middleware resolved. Routes using it are
// always mounted behind RequireUser, so absence is a programming error and
// surfaces as an empty partition key matching no rows.
func username(r *http.Request) string {
	id, _ := identity.FromContext(r.Context())
	return id.Username
}

// pathID parses a numeric URL parameter, answering 400 itself on failure.
func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return id, true
}

// internal logs the real error and answers with a generic message.
func (h *Handler) internal(w http.ResponseWriter, r *http.Request, err error, msg string) {
	slog.ErrorContext(r.Context(), msg, "error", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, msg)
}

// invalidArgumentMessage surfaces the validation detail after the sentinel
// prefix, e.g. "invalid argument: expiry month must be..." → the tail.
func invalidArgumentMessage(err error) string {
	const prefix = "invalid argument: "
	s := err.Error()
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return "Invalid request"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
