package v1

import (
	"net/http"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/internal/usecase"
	"waxcrate-backend/pkg/utils"
)

type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(catalogUC *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC}
}

func (h *CatalogHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := utils.ParseInt(q.Get("page"), 1)
	limit := utils.ParseInt(q.Get("limit"), 20)

	albums, total, err := h.catalogUC.ListAlbums(r.Context(), domain.AlbumFilter{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		InStock: q.Get("inStock") == "true",
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"albums": albums,
		"total":  total,
	})
}

func (h *CatalogHandler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := h.catalogUC.GetAlbum(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, album)
}
