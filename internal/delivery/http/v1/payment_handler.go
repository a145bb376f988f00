package v1

import (
	"errors"
	"io"
	"net/http"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/internal/infrastructure/payment"
	"waxcrate-backend/internal/usecase"
	"waxcrate-backend/pkg/logger"
	"waxcrate-backend/pkg/utils"
)

const maxWebhookBody = 1 << 20

// WebhookVerifier authenticates a raw gateway notification.
type WebhookVerifier interface {
	ConstructEvent(payload []byte, sigHeader string) (*domain.WebhookEvent, error)
}

// PaymentHandler terminates the two payment-completion triggers: the
// server-to-server webhook and the customer-facing redirect callbacks.
type PaymentHandler struct {
	orderUC     *usecase.OrderUsecase
	verifier    WebhookVerifier
	frontendURL string
}

func NewPaymentHandler(orderUC *usecase.OrderUsecase, verifier WebhookVerifier, frontendURL string) *PaymentHandler {
	return &PaymentHandler{
		orderUC:     orderUC,
		verifier:    verifier,
		frontendURL: frontendURL,
	}
}

// Webhook handles signed gateway events. Signature failure is a hard
// 400 with no state change; a recognized event that was already
// processed still gets a 200 so the gateway stops redelivering.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Failed to read payload")
		return
	}

	event, err := h.verifier.ConstructEvent(payload, r.Header.Get(payment.SignatureHeader))
	if err != nil {
		logger.WithContext(r.Context()).Warn().Err(err).Msg("webhook rejected")
		utils.WriteError(w, http.StatusBadRequest, "Signature verification failed")
		return
	}

	if event.Type != domain.EventCheckoutCompleted {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	orderID := event.Metadata["order_id"]
	if orderID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Event missing order_id metadata")
		return
	}

	if err := h.orderUC.MarkPaid(r.Context(), orderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The order is gone (e.g. cancelled); acknowledge so the
			// gateway stops retrying.
			logger.WithContext(r.Context()).Warn().
				Str("order_id", orderID).
				Msg("webhook for unknown order acknowledged")
			utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Success is the hosted-checkout return URL; the gateway appends the
// session id. It races the webhook, MarkPaid absorbs whichever loses.
func (h *PaymentHandler) Success(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		utils.WriteError(w, http.StatusBadRequest, "session_id required")
		return
	}

	orderID, err := h.orderUC.MarkPaidBySession(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	http.Redirect(w, r, h.frontendURL+"/orders/"+orderID+"/confirmation", http.StatusSeeOther)
}

// Cancel is the hosted-checkout abandon URL; deletes the unpaid order
// and reopens the cart so the customer can try again.
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		utils.WriteError(w, http.StatusBadRequest, "order_id required")
		return
	}

	if err := h.orderUC.CancelUnpaid(r.Context(), orderID, ""); err != nil {
		writeDomainError(w, err)
		return
	}
	http.Redirect(w, r, h.frontendURL+"/cart", http.StatusSeeOther)
}
