package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/handlers"
	uiassets "github.com/gitshopapp/storefront/ui/assets"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	// Static assets and machine endpoints skip the shopper session.
	r.PathPrefix("/assets/").Handler(uiassets.Handler("/assets/")).Name("assets")
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")
	r.HandleFunc("/webhooks/stripe", h.StripeWebhook).Methods("POST").Name("webhooks.stripe")

	shop := r.NewRoute().Subrouter()
	shop.Use(h.SessionMiddleware)
	shop.Use(h.ShopperContext)
	shop.Use(h.RequireSameOrigin)

	shop.HandleFunc("/", h.Products).Methods("GET").Name("products")
	shop.HandleFunc("/cart", h.Cart).Methods("GET").Name("cart")
	shop.HandleFunc("/cart/add", h.AddToCart).Methods("POST").Name("cart.add")
	shop.HandleFunc("/cart/remove", h.RemoveFromCart).Methods("POST").Name("cart.remove")
	shop.HandleFunc("/checkout", h.StartCheckout).Methods("POST").Name("checkout.start")
	shop.HandleFunc("/checkout/success", h.CheckoutSuccess).Methods("GET").Name("checkout.success")

	shop.HandleFunc("/orders", h.Orders).Methods("GET").Name("orders")
	shop.HandleFunc("/orders/{id}", h.OrderDetail).Methods("GET").Name("orders.detail")
	shop.HandleFunc("/orders/{id}/cancel", h.CancelOrder).Methods("POST").Name("orders.cancel")
	shop.HandleFunc("/orders/{id}/invoice", h.Invoice).Methods("GET").Name("orders.invoice")
	shop.HandleFunc("/orders/{id}/invoice.txt", h.InvoiceText).Methods("GET").Name("orders.invoice.text")

	shop.HandleFunc("/pages/{slug}", h.ContentPage).Methods("GET").Name("pages")
	shop.HandleFunc("/faq", h.FAQ).Methods("GET").Name("faq")
	shop.HandleFunc("/support", h.Support).Methods("GET").Name("support")
	shop.HandleFunc("/support", h.SupportMessage).Methods("POST").Name("support.message")

	shop.HandleFunc("/downloads", h.Downloads).Methods("GET").Name("downloads")
	shop.HandleFunc("/downloads/file", h.DownloadFile).Methods("GET").Name("downloads.file")
	shop.HandleFunc("/downloads/{id}/link", h.DownloadLink).Methods("POST").Name("downloads.link")

	return r
}
