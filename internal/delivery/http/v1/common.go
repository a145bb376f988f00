package v1

import (
	"errors"
	"net/http"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/pkg/utils"
)

// currentUser pulls the authenticated user placed in the context by the
// auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok || user == nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return user, true
}

// writeDomainError maps domain errors onto HTTP statuses. Insufficient
// stock gets a structured body so the client can show every offending
// line.
func writeDomainError(w http.ResponseWriter, err error) {
	if ise, ok := domain.AsInsufficientStock(err); ok {
		utils.WriteJSON(w, http.StatusConflict, map[string]interface{}{
			"error":     "insufficient stock",
			"shortages": ise.Shortages,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPromoNotFound),
		errors.Is(err, domain.ErrPaymentSessionUnknown):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrCartEmpty),
		errors.Is(err, domain.ErrItemsNotInOrder):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCartClosed), errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrOpenCartExists), errors.Is(err, domain.ErrReturnNotCancellable),
		errors.Is(err, domain.ErrReturnWindowClosed):
		utils.WriteError(w, http.StatusConflict, err.Error())
	default:
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// productRefFromPath reads the {kind}/{id} pair used by cart, wishlist
// and favorites routes.
func productRefFromPath(r *http.Request) (domain.ProductRef, bool) {
	kind := r.PathValue("kind")
	id := r.PathValue("id")
	if kind == "" || id == "" {
		return domain.ProductRef{}, false
	}
	return domain.ProductRef{Kind: domain.ProductKind(kind), ID: id}, true
}
