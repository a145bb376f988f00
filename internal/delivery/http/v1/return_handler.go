package v1

import (
	"net/http"
	"strings"

	"waxcrate-backend/internal/usecase"
	"waxcrate-backend/pkg/utils"
)

type ReturnHandler struct {
	returnUC      *usecase.ReturnUsecase
	maxUploadByte int64
}

func NewReturnHandler(returnUC *usecase.ReturnUsecase, maxUploadSizeMB int64) *ReturnHandler {
	return &ReturnHandler{
		returnUC:      returnUC,
		maxUploadByte: maxUploadSizeMB << 20,
	}
}

// SubmitReturn accepts a multipart form: orderId, itemIds (comma
// separated), reason, details and an optional attachment file.
func (h *ReturnHandler) SubmitReturn(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadByte)
	if err := r.ParseMultipartForm(h.maxUploadByte); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid or oversized form")
		return
	}

	req := usecase.SubmitReturnRequest{
		OrderID: r.FormValue("orderId"),
		Reason:  r.FormValue("reason"),
		Details: r.FormValue("details"),
	}
	for _, id := range strings.Split(r.FormValue("itemIds"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			req.ItemIDs = append(req.ItemIDs, id)
		}
	}

	if file, header, err := r.FormFile("attachment"); err == nil {
		defer file.Close()
		req.Attachment = file
		req.AttachmentHeader = header
	}

	rr, err := h.returnUC.SubmitReturn(r.Context(), user.ID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, rr)
}

func (h *ReturnHandler) CancelReturn(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.returnUC.CancelReturn(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

func (h *ReturnHandler) ListMyReturns(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	returns, err := h.returnUC.ListMyReturns(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, returns)
}
