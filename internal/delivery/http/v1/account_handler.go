package v1

import (
	"context"
	"net/http"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/internal/usecase"
	"waxcrate-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type AccountHandler struct {
	accountUC *usecase.AccountUsecase
}

func NewAccountHandler(accountUC *usecase.AccountUsecase) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	profile, err := h.accountUC.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req usecase.UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	profile, err := h.accountUC.UpdateContact(r.Context(), user.ID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile)
}

type productRefReq struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (req productRefReq) ref() (domain.ProductRef, bool) {
	if req.ID == "" {
		return domain.ProductRef{}, false
	}
	kind := req.Kind
	if kind == "" {
		kind = string(domain.ProductKindAlbum)
	}
	return domain.ProductRef{Kind: domain.ProductKind(kind), ID: req.ID}, true
}

func (h *AccountHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	h.addRef(w, r, h.accountUC.AddToWishlist)
}

func (h *AccountHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	h.removeRef(w, r, h.accountUC.RemoveFromWishlist)
}

func (h *AccountHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	products, err := h.accountUC.GetWishlist(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *AccountHandler) AddToFavorites(w http.ResponseWriter, r *http.Request) {
	h.addRef(w, r, h.accountUC.AddToFavorites)
}

func (h *AccountHandler) RemoveFromFavorites(w http.ResponseWriter, r *http.Request) {
	h.removeRef(w, r, h.accountUC.RemoveFromFavorites)
}

func (h *AccountHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	products, err := h.accountUC.GetFavorites(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *AccountHandler) addRef(w http.ResponseWriter, r *http.Request, add func(ctx context.Context, customerID string, ref domain.ProductRef) error) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req productRefReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	ref, ok := req.ref()
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Product reference required")
		return
	}
	if err := add(r.Context(), user.ID, ref); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AccountHandler) removeRef(w http.ResponseWriter, r *http.Request, remove func(ctx context.Context, customerID string, ref domain.ProductRef) error) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ref, ok := productRefFromPath(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Product reference required")
		return
	}
	if err := remove(r.Context(), user.ID, ref); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AccountHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	notifications, err := h.accountUC.UnreadNotifications(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, notifications)
}

func (h *AccountHandler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.accountUC.MarkNotificationsRead(r.Context(), user.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AccountHandler) GetLoyaltyStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	status, err := h.accountUC.LoyaltyStatus(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, status)
}
