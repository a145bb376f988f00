package v1

import (
	"net/http"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/internal/usecase"
	"waxcrate-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type OrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewOrderHandler(orderUC *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{orderUC: orderUC}
}

type checkoutReq struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	BuyingType string `json:"buyingType"`
	Comment    string `json:"comment"`
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.FirstName == "" || req.Phone == "" || req.Address == "" {
		utils.WriteError(w, http.StatusBadRequest, "Name, phone and address are required")
		return
	}
	if req.BuyingType == "" {
		req.BuyingType = "delivery"
	}

	result, err := h.orderUC.Checkout(r.Context(), user.ID, domain.ShippingInfo{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Address:    req.Address,
		BuyingType: req.BuyingType,
		Comment:    req.Comment,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, result)
}

func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	orders, err := h.orderUC.GetMyOrders(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	order, err := h.orderUC.GetOrder(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

// CancelOrder deletes an unpaid order and reopens its cart.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.orderUC.CancelUnpaid(r.Context(), r.PathValue("id"), user.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
