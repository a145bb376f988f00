package v1

import (
	"net/http"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/internal/usecase"
	"waxcrate-backend/pkg/utils"

	"github.com/goccy/go-json"
)

// AdminHandler groups the store-management endpoints: price lists,
// promotions, stock corrections, promo codes and return processing.
type AdminHandler struct {
	pricingUC *usecase.PricingUsecase
	catalogUC *usecase.CatalogUsecase
	promoUC   *usecase.PromoUsecase
	returnUC  *usecase.ReturnUsecase
}

func NewAdminHandler(pricingUC *usecase.PricingUsecase, catalogUC *usecase.CatalogUsecase, promoUC *usecase.PromoUsecase, returnUC *usecase.ReturnUsecase) *AdminHandler {
	return &AdminHandler{
		pricingUC: pricingUC,
		catalogUC: catalogUC,
		promoUC:   promoUC,
		returnUC:  returnUC,
	}
}

// --- Price lists ---

func (h *AdminHandler) ListPriceLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.pricingUC.ListPriceLists(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, lists)
}

func (h *AdminHandler) ActivatePriceList(w http.ResponseWriter, r *http.Request) {
	if err := h.pricingUC.ActivatePriceList(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

// --- Promotions ---

func (h *AdminHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.pricingUC.ListPromotions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, promos)
}

func (h *AdminHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req usecase.PromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	promo, err := h.pricingUC.CreatePromotion(r.Context(), req)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusCreated, promo)
}

func (h *AdminHandler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	if err := h.pricingUC.DeletePromotion(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Stock ---

type adjustStockReq struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Delta int    `json:"delta"`
}

func (h *AdminHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = string(domain.ProductKindAlbum)
	}
	ref := domain.ProductRef{Kind: domain.ProductKind(kind), ID: req.ID}

	if err := h.catalogUC.AdjustStock(r.Context(), ref, req.Delta); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "adjusted"})
}

// --- Promo codes ---

func (h *AdminHandler) ListPromoCodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := utils.ParseInt(q.Get("limit"), 20)
	offset := utils.ParseInt(q.Get("offset"), 0)

	promos, total, err := h.promoUC.ListPromoCodes(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"promoCodes": promos,
		"total":      total,
	})
}

func (h *AdminHandler) GetPromoCode(w http.ResponseWriter, r *http.Request) {
	promo, err := h.promoUC.GetPromoCode(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, promo)
}

func (h *AdminHandler) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	var req usecase.PromoCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	promo, err := h.promoUC.CreatePromoCode(r.Context(), req)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusCreated, promo)
}

func (h *AdminHandler) UpdatePromoCode(w http.ResponseWriter, r *http.Request) {
	var req usecase.PromoCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.promoUC.UpdatePromoCode(r.Context(), r.PathValue("id"), req); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *AdminHandler) DeletePromoCode(w http.ResponseWriter, r *http.Request) {
	if err := h.promoUC.DeletePromoCode(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Returns ---

type updateReturnStatusReq struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateReturnStatus(w http.ResponseWriter, r *http.Request) {
	var req updateReturnStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		utils.WriteError(w, http.StatusBadRequest, "Status required")
		return
	}
	if err := h.returnUC.UpdateReturnStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}
