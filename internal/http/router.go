package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agridash-backend/internal/handlers"
	"agridash-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	stockHandler *handlers.StockHandler,
	saleHandler *handlers.SaleHandler,
	notificationHandler *handlers.NotificationHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected API routes - Session
	sessionAPI := r.PathPrefix("/api/auth").Subrouter()
	sessionAPI.Use(authMiddleware.Authenticate)
	sessionAPI.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	sessionAPI.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Protected API routes - Stock ledger
	stockAPI := r.PathPrefix("/api/stock").Subrouter()
	stockAPI.Use(authMiddleware.Authenticate)
	stockAPI.HandleFunc("", stockHandler.List).Methods("GET")
	stockAPI.HandleFunc("", stockHandler.Create).Methods("POST")
	stockAPI.HandleFunc("/by-name", stockHandler.GetByName).Methods("GET")
	stockAPI.HandleFunc("/{id}", stockHandler.Get).Methods("GET")
	stockAPI.HandleFunc("/{id}/quantity", stockHandler.UpdateQuantity).Methods("PUT")
	stockAPI.HandleFunc("/{id}/status", stockHandler.SetStatus).Methods("PUT")

	// Protected API routes - Sales
	salesAPI := r.PathPrefix("/api/sales").Subrouter()
	salesAPI.Use(authMiddleware.Authenticate)
	salesAPI.HandleFunc("", saleHandler.List).Methods("GET")
	salesAPI.HandleFunc("", saleHandler.Record).Methods("POST")

	// Protected API routes - Notifications
	notifAPI := r.PathPrefix("/api/notifications").Subrouter()
	notifAPI.Use(authMiddleware.Authenticate)
	notifAPI.HandleFunc("", notificationHandler.ListUnread).Methods("GET")
	notifAPI.HandleFunc("/count", notificationHandler.UnreadCount).Methods("GET")
	notifAPI.HandleFunc("/read-all", notificationHandler.MarkAllRead).Methods("POST")
	notifAPI.HandleFunc("/{id}/read", notificationHandler.MarkRead).Methods("PUT")

	// WebSocket feed validates a token query parameter in the handler;
	// browsers cannot set Authorization headers on websocket upgrades
	r.HandleFunc("/ws/notifications", notificationHandler.Stream)

	// Protected API routes - Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/sales.csv", reportHandler.SalesCSV).Methods("GET")
	reportsAPI.HandleFunc("/sales.pdf", reportHandler.SalesPDF).Methods("GET")

	// Health endpoints (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
