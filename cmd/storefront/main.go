package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/SarthakSoni31/Driven-backend/internal/admin"
	"github.com/SarthakSoni31/Driven-backend/internal/auth"
	"github.com/SarthakSoni31/Driven-backend/internal/blog"
	"github.com/SarthakSoni31/Driven-backend/internal/cache"
	"github.com/SarthakSoni31/Driven-backend/internal/cart"
	"github.com/SarthakSoni31/Driven-backend/internal/catalog"
	"github.com/SarthakSoni31/Driven-backend/internal/config"
	"github.com/SarthakSoni31/Driven-backend/internal/customers"
	"github.com/SarthakSoni31/Driven-backend/internal/email"
	"github.com/SarthakSoni31/Driven-backend/internal/feedback"
	"github.com/SarthakSoni31/Driven-backend/internal/messaging"
	"github.com/SarthakSoni31/Driven-backend/internal/orders"
	"github.com/SarthakSoni31/Driven-backend/internal/otp"
	"github.com/SarthakSoni31/Driven-backend/internal/policy"
	"github.com/SarthakSoni31/Driven-backend/internal/postgres"
	"github.com/SarthakSoni31/Driven-backend/internal/telemetry"
	"github.com/SarthakSoni31/Driven-backend/internal/users"
)

const tokenTTL = 12 * time.Hour

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load("8080")

	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if len(cfg.KafkaBrokers) == 0 && cfg.EmailServiceURL == "" {
		logger.Error("KAFKA_BROKERS or EMAIL_SERVICE_URL is required to deliver codes")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, "storefront", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("storefront", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := postgres.Open(ctx, cfg.PostgresURL, cfg.PostgresSchema)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	catalogCache, err := cache.Connect(ctx, cfg.RedisAddr, "driven:", cfg.CacheTTL, logger)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() { _ = catalogCache.Close() }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	var publisher orders.Publisher
	var dispatcher otp.Dispatcher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers)
		defer func() { _ = producer.Close() }()
		publisher = producer
		dispatcher = otp.NewEventDispatcher(producer)
	} else {
		logger.Warn("KAFKA_BROKERS not set, sending codes directly and skipping order events")
		dispatcher = otp.NewMailDispatcher(email.NewClient(cfg.EmailServiceURL, httpClient))
	}

	access := policy.Default()
	tokens := auth.NewTokenManager(cfg.JWTSecret, tokenTTL)

	catalogService := catalog.NewService(catalog.NewCategoryRepository(db), catalog.NewProductRepository(db), catalogCache, logger)
	blogService := blog.NewService(blog.NewPostRepository(db), blog.NewCategoryRepository(db), catalogCache, logger)
	userService := users.NewService(users.NewUserRepository(db), users.NewRoleRepository(db), auth.NewPasswordHasher(), logger)
	customerRepo := customers.NewRepository(db)
	feedbackRepo := feedback.NewRepository(db)
	orderService := orders.NewService(orders.NewOrderRepository(db), publisher, logger)

	catalogHandler := catalog.NewHandler(catalogService, access, logger)
	blogHandler := blog.NewHandler(blogService, access, logger)
	userHandler := users.NewHandler(userService, access, logger)
	feedbackHandler := feedback.NewHandler(feedbackRepo, access, logger)
	cartHandler := cart.NewHandler(cart.NewService(cart.NewRepository(db), logger), logger)
	customerHandler := customers.NewHandler(customers.NewService(customerRepo, logger), logger)
	orderHandler := orders.NewHandler(orderService, access, logger)
	otpHandler := otp.NewHandler(otp.NewService(otp.NewRepository(db), customerRepo, dispatcher, logger), logger)

	console, err := admin.NewConsole(admin.Sources{
		Catalog:  catalogService,
		Blogs:    blogService,
		Staff:    userService,
		Feedback: feedbackRepo,
		Orders:   orderService,
	}, access, logger)
	if err != nil {
		logger.Error("failed to load admin templates", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	route := func(pattern string, h http.HandlerFunc) { mux.HandleFunc(pattern, telemetry.WithHTTPRoute(h)) }

	route("GET /api/categories", catalogHandler.HandleListCategories)
	route("GET /api/categories/{slug}", catalogHandler.HandleGetCategoryBySlug)
	route("GET /api/products", catalogHandler.HandleListProducts)
	route("GET /api/products/{slug}", catalogHandler.HandleGetProductBySlug)
	route("GET /api/blogs", blogHandler.HandleList)
	route("GET /api/blogs/{slug}", blogHandler.HandleGetBySlug)
	route("GET /api/users", userHandler.HandleList)
	route("GET /api/roles", userHandler.HandleListRoles)
	route("GET /api/feedback", feedbackHandler.HandleList)
	route("POST /api/feedback", feedbackHandler.HandleSubmit)
	route("GET /api/cart", cartHandler.HandleFetch)
	route("POST /api/cart", cartHandler.HandleAdd)
	route("PUT /api/cart/{cartId}/items/{itemId}", cartHandler.HandleUpdateQuantity)
	route("DELETE /api/cart/{cartId}/items/{itemId}", cartHandler.HandleRemove)
	route("GET /api/customers/{customerId}/addresses", customerHandler.HandleListAddresses)
	route("POST /api/customers/{customerId}/addresses", customerHandler.HandleAddAddress)
	route("PUT /api/customers/{customerId}/addresses/{addressId}", customerHandler.HandleUpdateAddress)
	route("PATCH /api/customers/{customerId}/addresses/{addressId}/default", customerHandler.HandleSetDefault)
	route("DELETE /api/customers/{customerId}/addresses/{addressId}", customerHandler.HandleDeleteAddress)
	route("POST /api/orders", orderHandler.HandlePlace)
	route("GET /api/orders/{customerId}", orderHandler.HandleListForCustomer)
	route("GET /api/orders/{customerId}/{orderId}", orderHandler.HandleGet)
	route("POST /api/otp/send", otpHandler.HandleSend)
	route("POST /api/otp/verify", otpHandler.HandleVerify)

	adminMux := http.NewServeMux()
	adminRoute := func(pattern string, h http.HandlerFunc) { adminMux.HandleFunc(pattern, telemetry.WithHTTPRoute(h)) }

	adminRoute("GET /admin", console.HandleDashboard)
	adminRoute("GET /admin/categories", console.HandleCategories)
	adminRoute("GET /admin/products", console.HandleProducts)
	adminRoute("GET /admin/blogs", console.HandleBlogs)
	adminRoute("GET /admin/users", console.HandleUsers)
	adminRoute("GET /admin/roles", console.HandleRoles)
	adminRoute("GET /admin/feedback", console.HandleFeedback)
	adminRoute("GET /admin/orders", console.HandleOrders)

	adminRoute("GET /admin/api/categories", catalogHandler.HandleCategoryTree)
	adminRoute("GET /admin/api/categories/{id}", catalogHandler.HandleGetCategory)
	adminRoute("POST /admin/api/categories", catalogHandler.HandleCreateCategory)
	adminRoute("PUT /admin/api/categories/{id}", catalogHandler.HandleUpdateCategory)
	adminRoute("DELETE /admin/api/categories/{id}", catalogHandler.HandleDeleteCategory)
	adminRoute("GET /admin/api/products", catalogHandler.HandleAdminListProducts)
	adminRoute("GET /admin/api/products/{id}", catalogHandler.HandleGetProduct)
	adminRoute("POST /admin/api/products", catalogHandler.HandleCreateProduct)
	adminRoute("PUT /admin/api/products/{id}", catalogHandler.HandleUpdateProduct)
	adminRoute("DELETE /admin/api/products/{id}", catalogHandler.HandleDeleteProduct)
	adminRoute("GET /admin/api/blogs", blogHandler.HandleAdminList)
	adminRoute("GET /admin/api/blogs/{id}", blogHandler.HandleGet)
	adminRoute("POST /admin/api/blogs", blogHandler.HandleCreate)
	adminRoute("PUT /admin/api/blogs/{id}", blogHandler.HandleUpdate)
	adminRoute("DELETE /admin/api/blogs/{id}", blogHandler.HandleDelete)
	adminRoute("GET /admin/api/blog-categories", blogHandler.HandleListCategories)
	adminRoute("POST /admin/api/blog-categories", blogHandler.HandleCreateCategory)
	adminRoute("PUT /admin/api/blog-categories/{id}", blogHandler.HandleUpdateCategory)
	adminRoute("DELETE /admin/api/blog-categories/{id}", blogHandler.HandleDeleteCategory)
	adminRoute("GET /admin/api/users/{id}", userHandler.HandleGet)
	adminRoute("POST /admin/api/users", userHandler.HandleCreate)
	adminRoute("PUT /admin/api/users/{id}", userHandler.HandleUpdate)
	adminRoute("DELETE /admin/api/users/{id}", userHandler.HandleDelete)
	adminRoute("GET /admin/api/roles/{id}", userHandler.HandleGetRole)
	adminRoute("POST /admin/api/roles", userHandler.HandleCreateRole)
	adminRoute("PUT /admin/api/roles/{id}", userHandler.HandleUpdateRole)
	adminRoute("DELETE /admin/api/roles/{id}", userHandler.HandleDeleteRole)
	adminRoute("GET /admin/api/feedback", feedbackHandler.HandleAdminList)
	adminRoute("GET /admin/api/orders", orderHandler.HandleAdminList)
	adminRoute("PUT /admin/api/orders/{id}/status", orderHandler.HandleUpdateStatus)
	adminRoute("GET /admin/api/cache", func(w http.ResponseWriter, r *http.Request) {
		if err := auth.Authorize(r.Context(), access, policy.ActionView, policy.ResourceProduct); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(catalogCache.Snapshot())
	})

	protected := tokens.Require(adminMux)
	mux.Handle("/admin", protected)
	mux.Handle("/admin/", protected)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(mux, "storefront", otelhttp.WithSpanNameFormatter(telemetry.SpanName)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront service", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
