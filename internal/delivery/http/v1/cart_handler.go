package v1

import (
	"net/http"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/internal/usecase"
	"waxcrate-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type CartHandler struct {
	cartUC *usecase.CartUsecase
}

func NewCartHandler(cartUC *usecase.CartUsecase) *CartHandler {
	return &CartHandler{cartUC: cartUC}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	cart, err := h.cartUC.GetMyCart(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

type cartItemReq struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func (r cartItemReq) ref() domain.ProductRef {
	kind := r.Kind
	if kind == "" {
		kind = string(domain.ProductKindAlbum)
	}
	return domain.ProductRef{Kind: domain.ProductKind(kind), ID: r.ID}
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.cartUC.AddToCart(r.Context(), user.ID, req.ref(), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

// SetQuantity pins a line's quantity; 0 removes the line.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	cart, err := h.cartUC.SetQuantity(r.Context(), user.ID, req.ref(), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

type changeQuantityReq struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Delta int    `json:"delta"`
}

// ChangeQuantity bumps a line by ±1 (or any delta); dropping below 1
// removes the line.
func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req changeQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" || req.Delta == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = string(domain.ProductKindAlbum)
	}
	ref := domain.ProductRef{Kind: domain.ProductKind(kind), ID: req.ID}
	cart, err := h.cartUC.ChangeQuantity(r.Context(), user.ID, ref, req.Delta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ref, ok := productRefFromPath(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Product reference required")
		return
	}

	cart, err := h.cartUC.RemoveFromCart(r.Context(), user.ID, ref)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	cart, err := h.cartUC.ClearCart(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

type applyPromoReq struct {
	Code string `json:"code"`
}

func (h *CartHandler) ApplyPromoCode(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req applyPromoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		utils.WriteError(w, http.StatusBadRequest, "Promo code required")
		return
	}

	result, err := h.cartUC.ApplyPromoCode(r.Context(), user.ID, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// A rejected code is a normal 200 answer carrying the reason.
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *CartHandler) RemovePromoCode(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	cart, err := h.cartUC.RemovePromoCode(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}
