package usecase

import (
	"context"
	"fmt"

	"waxcrate-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// loyaltyTiers maps lifetime spend thresholds to a storewide discount
// percentage. Ascending order matters for the "next tier" computation.
var loyaltyTiers = []struct {
	Threshold int64
	Percent   int
}{
	{15000, 3},
	{50000, 5},
	{100000, 10},
	{300000, 15},
	{500000, 20},
}

// AccountUsecase covers the customer-profile side features: wishlist,
// favorites, notifications and the loyalty discount tier.
type AccountUsecase struct {
	accountRepo domain.AccountRepository
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
}

func NewAccountUsecase(accountRepo domain.AccountRepository, orderRepo domain.OrderRepository, productRepo domain.ProductRepository) *AccountUsecase {
	return &AccountUsecase{
		accountRepo: accountRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

func (uc *AccountUsecase) GetProfile(ctx context.Context, customerID string) (*domain.User, error) {
	return uc.accountRepo.GetUserByID(ctx, customerID)
}

// UpdateContactRequest carries the editable profile fields.
type UpdateContactRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (uc *AccountUsecase) UpdateContact(ctx context.Context, customerID string, req UpdateContactRequest) (*domain.User, error) {
	user, err := uc.accountRepo.GetUserByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Phone = req.Phone
	user.Address = req.Address
	if err := uc.accountRepo.UpdateContact(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *AccountUsecase) AddToWishlist(ctx context.Context, customerID string, ref domain.ProductRef) error {
	if _, err := uc.productRepo.Resolve(ctx, ref); err != nil {
		return fmt.Errorf("product %s: %w", ref, err)
	}
	return uc.accountRepo.AddToWishlist(ctx, customerID, ref)
}

func (uc *AccountUsecase) RemoveFromWishlist(ctx context.Context, customerID string, ref domain.ProductRef) error {
	return uc.accountRepo.RemoveFromWishlist(ctx, customerID, ref)
}

// GetWishlist resolves the wishlisted refs to live products so the
// response can carry names and stock.
func (uc *AccountUsecase) GetWishlist(ctx context.Context, customerID string) ([]domain.Sellable, error) {
	return uc.resolveRefs(ctx, uc.accountRepo.GetWishlist, customerID)
}

func (uc *AccountUsecase) AddToFavorites(ctx context.Context, customerID string, ref domain.ProductRef) error {
	if _, err := uc.productRepo.Resolve(ctx, ref); err != nil {
		return fmt.Errorf("product %s: %w", ref, err)
	}
	return uc.accountRepo.AddToFavorites(ctx, customerID, ref)
}

func (uc *AccountUsecase) RemoveFromFavorites(ctx context.Context, customerID string, ref domain.ProductRef) error {
	return uc.accountRepo.RemoveFromFavorites(ctx, customerID, ref)
}

func (uc *AccountUsecase) GetFavorites(ctx context.Context, customerID string) ([]domain.Sellable, error) {
	return uc.resolveRefs(ctx, uc.accountRepo.GetFavorites, customerID)
}

func (uc *AccountUsecase) resolveRefs(ctx context.Context, list func(context.Context, string) ([]domain.ProductRef, error), customerID string) ([]domain.Sellable, error) {
	refs, err := list(ctx, customerID)
	if err != nil {
		return nil, err
	}
	resolved, err := uc.productRepo.ResolveMany(ctx, refs)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Sellable, 0, len(refs))
	for _, ref := range refs {
		if p, ok := resolved[ref]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (uc *AccountUsecase) UnreadNotifications(ctx context.Context, customerID string) ([]domain.Notification, error) {
	return uc.accountRepo.UnreadNotifications(ctx, customerID)
}

func (uc *AccountUsecase) MarkNotificationsRead(ctx context.Context, customerID string) error {
	return uc.accountRepo.MarkNotificationsRead(ctx, customerID)
}

// LoyaltyStatus derives the customer's discount tier from the sum of
// their successful payments.
func (uc *AccountUsecase) LoyaltyStatus(ctx context.Context, customerID string) (*domain.LoyaltyStatus, error) {
	total, err := uc.orderRepo.SumPaidByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	status := &domain.LoyaltyStatus{TotalSpent: total}
	for _, tier := range loyaltyTiers {
		threshold := decimal.NewFromInt(tier.Threshold)
		if total.GreaterThanOrEqual(threshold) {
			status.DiscountPercent = tier.Percent
			continue
		}
		status.NextThreshold = threshold
		status.NextDiscountPercent = tier.Percent
		status.AmountLeft = threshold.Sub(total)
		break
	}
	return status, nil
}
