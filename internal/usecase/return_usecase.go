package usecase

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/pkg/logger"
	"waxcrate-backend/pkg/utils"
)

// AttachmentStorage stores the optional evidence file attached to a
// return request.
type AttachmentStorage interface {
	UploadAttachment(ctx context.Context, file multipart.File, fileHeader *multipart.FileHeader) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

// ReturnUsecase handles post-fulfillment return requests. A request is
// accepted within 14 days of the order date, covers a subset of the
// order's cart lines and is cancellable only while pending.
type ReturnUsecase struct {
	returnRepo domain.ReturnRepository
	orderRepo  domain.OrderRepository
	cartRepo   domain.CartRepository
	storage    AttachmentStorage
	now        func() time.Time
}

func NewReturnUsecase(returnRepo domain.ReturnRepository, orderRepo domain.OrderRepository, cartRepo domain.CartRepository, storage AttachmentStorage) *ReturnUsecase {
	return &ReturnUsecase{
		returnRepo: returnRepo,
		orderRepo:  orderRepo,
		cartRepo:   cartRepo,
		storage:    storage,
		now:        time.Now,
	}
}

// SubmitReturnRequest is the customer input; Attachment may be nil.
type SubmitReturnRequest struct {
	OrderID          string
	ItemIDs          []string
	Reason           string
	Details          string
	Attachment       multipart.File
	AttachmentHeader *multipart.FileHeader
}

func (uc *ReturnUsecase) SubmitReturn(ctx context.Context, customerID string, req SubmitReturnRequest) (*domain.ReturnRequest, error) {
	if len(req.ItemIDs) == 0 {
		return nil, fmt.Errorf("at least one item must be selected")
	}
	if req.Reason == "" {
		return nil, fmt.Errorf("a return reason is required")
	}

	order, err := uc.orderRepo.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	if uc.now().After(order.OrderDate.Add(domain.ReturnWindow)) {
		return nil, domain.ErrReturnWindowClosed
	}

	// Every selected item must be a line of the order's cart.
	items, err := uc.cartRepo.GetItems(ctx, order.CartID)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(items))
	for _, item := range items {
		owned[item.ID] = true
	}
	for _, id := range req.ItemIDs {
		if !owned[id] {
			return nil, domain.ErrItemsNotInOrder
		}
	}

	var attachmentURL *string
	if req.Attachment != nil && req.AttachmentHeader != nil {
		url, err := uc.storage.UploadAttachment(ctx, req.Attachment, req.AttachmentHeader)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		attachmentURL = &url
	}

	rr := &domain.ReturnRequest{
		ID:            utils.GenerateUUID(),
		CustomerID:    customerID,
		OrderID:       order.ID,
		ItemIDs:       req.ItemIDs,
		Reason:        req.Reason,
		Details:       req.Details,
		AttachmentURL: attachmentURL,
		Status:        domain.ReturnStatusPending,
	}
	if err := uc.returnRepo.CreateReturn(ctx, rr); err != nil {
		// Best effort: do not leave an orphaned attachment behind.
		if attachmentURL != nil {
			if delErr := uc.storage.DeleteFile(ctx, *attachmentURL); delErr != nil {
				logger.WithContext(ctx).Warn().Err(delErr).Msg("failed to clean up return attachment")
			}
		}
		return nil, err
	}
	return rr, nil
}

// CancelReturn lets the customer withdraw a request that has not been
// processed yet.
func (uc *ReturnUsecase) CancelReturn(ctx context.Context, customerID, returnID string) error {
	rr, err := uc.returnRepo.GetReturnByID(ctx, returnID)
	if err != nil {
		return err
	}
	if rr.CustomerID != customerID {
		return domain.ErrNotFound
	}
	if rr.Status != domain.ReturnStatusPending {
		return domain.ErrReturnNotCancellable
	}
	return uc.returnRepo.UpdateReturnStatus(ctx, returnID, domain.ReturnStatusCanceled)
}

func (uc *ReturnUsecase) ListMyReturns(ctx context.Context, customerID string) ([]domain.ReturnRequest, error) {
	return uc.returnRepo.GetReturnsByCustomer(ctx, customerID)
}

// UpdateReturnStatus is the admin transition (pending → approved →
// paid, or canceled).
func (uc *ReturnUsecase) UpdateReturnStatus(ctx context.Context, returnID, status string) error {
	switch status {
	case domain.ReturnStatusPending, domain.ReturnStatusApproved, domain.ReturnStatusCanceled, domain.ReturnStatusPaid:
	default:
		return fmt.Errorf("unknown return status %q", status)
	}
	return uc.returnRepo.UpdateReturnStatus(ctx, returnID, status)
}
