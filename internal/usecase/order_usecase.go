package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waxcrate-backend/internal/domain"
	"waxcrate-backend/pkg/logger"
	"waxcrate-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// GatewayConfig is what checkout needs to open a hosted payment session.
type GatewayConfig struct {
	Currency   string
	SuccessURL string // gateway appends ?session_id=...
	CancelURL  string // gateway appends ?order_id=...
}

// OrderUsecase drives the order state machine: created (payment session
// open) → in_progress (paid, fulfilled), or created → deleted when the
// customer abandons before paying. Fulfillment side effects run exactly
// once per order, guarded by the paid flag under a row lock.
type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	promoRepo   domain.PromoCodeRepository
	gateway     domain.PaymentGateway
	txManager   domain.TransactionManager
	gwConfig    GatewayConfig
	now         func() time.Time
}

func NewOrderUsecase(
	orderRepo domain.OrderRepository,
	cartRepo domain.CartRepository,
	productRepo domain.ProductRepository,
	promoRepo domain.PromoCodeRepository,
	gateway domain.PaymentGateway,
	txManager domain.TransactionManager,
	gwConfig GatewayConfig,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		promoRepo:   promoRepo,
		gateway:     gateway,
		txManager:   txManager,
		gwConfig:    gwConfig,
		now:         time.Now,
	}
}

// CheckoutResult carries the created order and where to send the
// customer to pay for it.
type CheckoutResult struct {
	Order       *domain.Order `json:"order"`
	RedirectURL string        `json:"redirectUrl"`
}

// Checkout converts the customer's open cart into an order and opens a
// hosted payment session, all in one transaction. Any stock shortfall
// aborts the whole operation with the complete list of offending lines;
// a gateway failure rolls everything back and leaves the cart open.
func (uc *OrderUsecase) Checkout(ctx context.Context, customerID string, shipping domain.ShippingInfo) (*CheckoutResult, error) {
	var result *CheckoutResult
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		cart, err := uc.cartRepo.GetOpenCartByCustomer(txCtx, customerID)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return domain.ErrCartEmpty
		}

		refs := make([]domain.ProductRef, len(cart.Items))
		for i, item := range cart.Items {
			refs[i] = item.Product
		}
		products, err := uc.productRepo.ResolveMany(txCtx, refs)
		if err != nil {
			return err
		}

		// Stock is checked per line; any shortfall aborts with the full
		// list so the customer can fix all of them at once.
		var shortages []domain.StockShortage
		for _, item := range cart.Items {
			product, ok := products[item.Product]
			if !ok {
				return fmt.Errorf("product %s: %w", item.Product, domain.ErrNotFound)
			}
			if product.AvailableStock() < item.Quantity {
				shortages = append(shortages, domain.StockShortage{
					Product:     item.Product,
					DisplayName: product.DisplayName(),
					Requested:   item.Quantity,
					Available:   product.AvailableStock(),
				})
			}
		}
		if len(shortages) > 0 {
			return &domain.InsufficientStockError{Shortages: shortages}
		}

		order := &domain.Order{
			ID:         utils.GenerateUUID(),
			CustomerID: customerID,
			CartID:     cart.ID,
			FirstName:  shipping.FirstName,
			LastName:   shipping.LastName,
			Phone:      shipping.Phone,
			Address:    shipping.Address,
			BuyingType: shipping.BuyingType,
			Comment:    shipping.Comment,
			Status:     domain.OrderStatusCreated,
			OrderDate:  uc.now(),
		}
		if err := uc.orderRepo.CreateOrder(txCtx, order); err != nil {
			return err
		}
		if err := uc.cartRepo.SetInOrder(txCtx, cart.ID, true); err != nil {
			return err
		}

		session, err := uc.gateway.OpenSession(txCtx, uc.buildCheckoutRequest(cart, products, order.ID))
		if err != nil {
			return fmt.Errorf("failed to open payment session: %w", err)
		}

		payment := &domain.Payment{
			ID:        utils.GenerateUUID(),
			OrderID:   order.ID,
			SessionID: session.ID,
			Amount:    cart.FinalPrice,
			Status:    domain.PaymentStatusPending,
			Method:    "hosted_checkout",
		}
		if err := uc.orderRepo.CreatePayment(txCtx, payment); err != nil {
			return err
		}

		order.Cart = cart
		order.Payments = []domain.Payment{*payment}
		result = &CheckoutResult{Order: order, RedirectURL: session.RedirectURL}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().
		Str("order_id", result.Order.ID).
		Str("customer_id", customerID).
		Str("amount", result.Order.Cart.FinalPrice.String()).
		Msg("order created, payment session opened")
	return result, nil
}

// buildCheckoutRequest maps cart lines to gateway line items with unit
// amounts in minor currency units. An applied promo becomes a flat
// coupon for the difference between the line sum and the final price.
func (uc *OrderUsecase) buildCheckoutRequest(cart *domain.Cart, products map[domain.ProductRef]domain.Sellable, orderID string) domain.CheckoutRequest {
	lines := make([]domain.CheckoutLineItem, 0, len(cart.Items))
	subtotal := decimal.Zero
	for _, item := range cart.Items {
		name := item.Product.String()
		if p, ok := products[item.Product]; ok {
			name = p.DisplayName()
		}
		lines = append(lines, domain.CheckoutLineItem{
			Name:       name,
			UnitAmount: item.UnitPrice().Shift(2).IntPart(),
			Quantity:   item.Quantity,
		})
		subtotal = subtotal.Add(item.LineTotal)
	}

	discount := subtotal.Sub(cart.FinalPrice)
	return domain.CheckoutRequest{
		LineItems:      lines,
		DiscountAmount: discount,
		Currency:       uc.gwConfig.Currency,
		SuccessURL:     uc.gwConfig.SuccessURL,
		CancelURL:      uc.gwConfig.CancelURL,
		Metadata:       map[string]string{"order_id": orderID},
	}
}

// MarkPaid applies the fulfillment side effects for an order exactly
// once. It is reachable concurrently from the success redirect and the
// webhook; the row lock plus the paid-flag guard make the second caller
// a no-op. Duplicate invocations return nil.
func (uc *OrderUsecase) MarkPaid(ctx context.Context, orderID string) error {
	return uc.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := uc.orderRepo.GetOrderByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Paid {
			logger.WithContext(txCtx).Debug().
				Str("order_id", orderID).
				Msg("duplicate payment notification absorbed")
			return nil
		}

		cart, err := uc.cartRepo.GetCartByID(txCtx, order.CartID)
		if err != nil {
			return err
		}

		refs := make([]domain.ProductRef, len(cart.Items))
		for i, item := range cart.Items {
			refs[i] = item.Product
		}
		products, err := uc.productRepo.ResolveMany(txCtx, refs)
		if err != nil {
			return err
		}

		// Stock may go negative here: overselling is warned about at
		// checkout, never hard-blocked at fulfillment.
		for _, item := range cart.Items {
			if err := uc.productRepo.DecrementStock(txCtx, item.Product, item.Quantity); err != nil {
				return err
			}
			if p, ok := products[item.Product]; ok && p.TracksSales() {
				if err := uc.productRepo.IncrementTotalSold(txCtx, item.Product, item.Quantity); err != nil {
					return err
				}
			}
		}

		if cart.AppliedPromo != nil {
			if err := uc.promoRepo.IncrementUsage(txCtx, *cart.AppliedPromo); err != nil {
				return err
			}
		}

		if err := uc.orderRepo.SetPaid(txCtx, order.ID, domain.OrderStatusInProgress); err != nil {
			return err
		}
		if err := uc.orderRepo.MarkPaymentSucceeded(txCtx, order.ID, uc.now()); err != nil {
			return err
		}

		logger.WithContext(txCtx).Info().
			Str("order_id", order.ID).
			Msg("order paid, fulfillment applied")
		return nil
	})
}

// MarkPaidBySession resolves a gateway session id (from the success
// redirect) to its order and marks it paid.
func (uc *OrderUsecase) MarkPaidBySession(ctx context.Context, sessionID string) (string, error) {
	payment, err := uc.orderRepo.GetPaymentBySessionID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if err := uc.MarkPaid(ctx, payment.OrderID); err != nil {
		return "", err
	}
	return payment.OrderID, nil
}

// CancelUnpaid deletes an order the customer abandoned before payment
// and reopens its cart. A paid order is never deleted.
func (uc *OrderUsecase) CancelUnpaid(ctx context.Context, orderID, customerID string) error {
	return uc.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := uc.orderRepo.GetOrderByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if customerID != "" && order.CustomerID != customerID {
			return domain.ErrNotFound
		}
		if order.Paid {
			return domain.ErrAlreadyPaid
		}

		if err := uc.cartRepo.SetInOrder(txCtx, order.CartID, false); err != nil {
			return err
		}
		// Hard delete so a repeat checkout starts clean; payments cascade.
		if err := uc.orderRepo.DeleteOrder(txCtx, order.ID); err != nil {
			return err
		}

		logger.WithContext(txCtx).Info().
			Str("order_id", orderID).
			Msg("unpaid order cancelled, cart reopened")
		return nil
	})
}

// GetMyOrders lists the customer's orders with their carts attached.
func (uc *OrderUsecase) GetMyOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	orders, err := uc.orderRepo.GetOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		cart, err := uc.cartRepo.GetCartByID(ctx, orders[i].CartID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		orders[i].Cart = cart
	}
	return orders, nil
}

// GetOrder returns one order, scoped to its owner when customerID is
// non-empty.
func (uc *OrderUsecase) GetOrder(ctx context.Context, orderID, customerID string) (*domain.Order, error) {
	order, err := uc.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if customerID != "" && order.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	cart, err := uc.cartRepo.GetCartByID(ctx, order.CartID)
	if err == nil {
		order.Cart = cart
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return order, nil
}
