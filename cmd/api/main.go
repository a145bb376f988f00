package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waxcrate-backend/config"
	"waxcrate-backend/internal/delivery/http/middleware"
	v1 "waxcrate-backend/internal/delivery/http/v1"
	"waxcrate-backend/internal/infrastructure/cache"
	"waxcrate-backend/internal/infrastructure/payment"
	"waxcrate-backend/internal/repository/pgxrepo"
	"waxcrate-backend/internal/usecase"
	"waxcrate-backend/pkg/logger"
	"waxcrate-backend/pkg/storage"
	"waxcrate-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	pgxPool, err := pgxrepo.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	log.Info().Msg("Connected to PostgreSQL")

	// Repositories
	productRepo := pgxrepo.NewProductRepository(pgxPool)
	pricingRepo := pgxrepo.NewPricingRepository(pgxPool)
	cartRepo := pgxrepo.NewCartRepository(pgxPool)
	promoRepo := pgxrepo.NewPromoCodeRepository(pgxPool)
	orderRepo := pgxrepo.NewOrderRepository(pgxPool)
	accountRepo := pgxrepo.NewAccountRepository(pgxPool)
	returnRepo := pgxrepo.NewReturnRepository(pgxPool)
	txManager := pgxrepo.NewTransactionManager(pgxPool)

	// Default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	// Payment gateway client (hosted checkout)
	checkoutClient := payment.NewClient(
		cfg.CheckoutAPIURL,
		cfg.CheckoutAPIKey,
		cfg.CheckoutWebhookSecret,
		cfg.CheckoutTimeout,
	)

	// R2 storage for return-request attachments
	r2Storage, err := storage.NewR2Storage(
		context.Background(),
		cfg.R2AccountID,
		cfg.R2AccessKeyID,
		cfg.R2AccessKeySecret,
		cfg.R2BucketName,
		cfg.R2PublicURL,
		cfg.R2UploadTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize R2 storage")
	}

	// Usecases
	pricingUC := usecase.NewPricingUsecase(pricingRepo, memCache, txManager, cfg.PriceListCacheTTL)
	promoUC := usecase.NewPromoUsecase(promoRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, promoRepo, pricingUC, txManager, cfg.MaxCartQuantity)
	orderUC := usecase.NewOrderUsecase(orderRepo, cartRepo, productRepo, promoRepo, checkoutClient, txManager, usecase.GatewayConfig{
		Currency:   cfg.Currency,
		SuccessURL: cfg.PublicBaseURL + "/api/v1/payments/success",
		CancelURL:  cfg.PublicBaseURL + "/api/v1/payments/cancel",
	})
	catalogUC := usecase.NewCatalogUsecase(productRepo, accountRepo, pricingUC, txManager)
	accountUC := usecase.NewAccountUsecase(accountRepo, orderRepo, productRepo)
	returnUC := usecase.NewReturnUsecase(returnRepo, orderRepo, cartRepo, r2Storage)

	// Handlers
	catalogHandler := v1.NewCatalogHandler(catalogUC)
	cartHandler := v1.NewCartHandler(cartUC)
	orderHandler := v1.NewOrderHandler(orderUC)
	paymentHandler := v1.NewPaymentHandler(orderUC, checkoutClient, cfg.FrontendURL)
	accountHandler := v1.NewAccountHandler(accountUC)
	returnHandler := v1.NewReturnHandler(returnUC, cfg.MaxUploadSizeMB)
	adminHandler := v1.NewAdminHandler(pricingUC, catalogUC, promoUC, returnUC)

	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Catalog (public)
	mux.HandleFunc("GET /api/v1/albums", catalogHandler.ListAlbums)
	mux.HandleFunc("GET /api/v1/albums/{id}", catalogHandler.GetAlbum)

	// Cart
	mux.Handle("GET /api/v1/cart", authed(cartHandler.GetCart))
	mux.Handle("POST /api/v1/cart", authed(cartHandler.AddToCart))
	mux.Handle("PUT /api/v1/cart", authed(cartHandler.SetQuantity))
	mux.Handle("PATCH /api/v1/cart", authed(cartHandler.ChangeQuantity))
	mux.Handle("DELETE /api/v1/cart", authed(cartHandler.ClearCart))
	mux.Handle("DELETE /api/v1/cart/{kind}/{id}", authed(cartHandler.RemoveFromCart))
	mux.Handle("POST /api/v1/cart/promo-code", authed(cartHandler.ApplyPromoCode))
	mux.Handle("DELETE /api/v1/cart/promo-code", authed(cartHandler.RemovePromoCode))

	// Checkout & orders
	mux.Handle("POST /api/v1/checkout", authed(orderHandler.Checkout))
	mux.Handle("GET /api/v1/orders", authed(orderHandler.GetMyOrders))
	mux.Handle("GET /api/v1/orders/{id}", authed(orderHandler.GetOrder))
	mux.Handle("DELETE /api/v1/orders/{id}", authed(orderHandler.CancelOrder))

	// Payment callbacks. The webhook authenticates with its signature,
	// the redirects carry gateway-issued identifiers.
	mux.HandleFunc("POST /api/v1/webhooks/checkout", paymentHandler.Webhook)
	mux.HandleFunc("GET /api/v1/payments/success", paymentHandler.Success)
	mux.HandleFunc("GET /api/v1/payments/cancel", paymentHandler.Cancel)

	// Account
	mux.Handle("GET /api/v1/account", authed(accountHandler.GetProfile))
	mux.Handle("PUT /api/v1/account", authed(accountHandler.UpdateProfile))
	mux.Handle("GET /api/v1/wishlist", authed(accountHandler.GetWishlist))
	mux.Handle("POST /api/v1/wishlist", authed(accountHandler.AddToWishlist))
	mux.Handle("DELETE /api/v1/wishlist/{kind}/{id}", authed(accountHandler.RemoveFromWishlist))
	mux.Handle("GET /api/v1/favorites", authed(accountHandler.GetFavorites))
	mux.Handle("POST /api/v1/favorites", authed(accountHandler.AddToFavorites))
	mux.Handle("DELETE /api/v1/favorites/{kind}/{id}", authed(accountHandler.RemoveFromFavorites))
	mux.Handle("GET /api/v1/notifications", authed(accountHandler.GetNotifications))
	mux.Handle("POST /api/v1/notifications/read", authed(accountHandler.MarkNotificationsRead))
	mux.Handle("GET /api/v1/loyalty", authed(accountHandler.GetLoyaltyStatus))

	// Returns
	mux.Handle("POST /api/v1/returns", authed(returnHandler.SubmitReturn))
	mux.Handle("GET /api/v1/returns", authed(returnHandler.ListMyReturns))
	mux.Handle("DELETE /api/v1/returns/{id}", authed(returnHandler.CancelReturn))

	// Admin
	mux.Handle("GET /api/v1/admin/price-lists", admin(adminHandler.ListPriceLists))
	mux.Handle("POST /api/v1/admin/price-lists/{id}/activate", admin(adminHandler.ActivatePriceList))
	mux.Handle("GET /api/v1/admin/promotions", admin(adminHandler.ListPromotions))
	mux.Handle("POST /api/v1/admin/promotions", admin(adminHandler.CreatePromotion))
	mux.Handle("DELETE /api/v1/admin/promotions/{id}", admin(adminHandler.DeletePromotion))
	mux.Handle("POST /api/v1/admin/inventory/adjust", admin(adminHandler.AdjustStock))
	mux.Handle("GET /api/v1/admin/promo-codes", admin(adminHandler.ListPromoCodes))
	mux.Handle("GET /api/v1/admin/promo-codes/{id}", admin(adminHandler.GetPromoCode))
	mux.Handle("POST /api/v1/admin/promo-codes", admin(adminHandler.CreatePromoCode))
	mux.Handle("PUT /api/v1/admin/promo-codes/{id}", admin(adminHandler.UpdatePromoCode))
	mux.Handle("DELETE /api/v1/admin/promo-codes/{id}", admin(adminHandler.DeletePromoCode))
	mux.Handle("PATCH /api/v1/admin/returns/{id}/status", admin(adminHandler.UpdateReturnStatus))

	// Health
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	// 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		50,
		100,
		time.Minute,
		3*time.Minute,
	)

	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	log.Info().Msgf("Server listening on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
