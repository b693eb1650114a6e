package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/leanderkretschmer/lotify/internal/application/admin"
	"github.com/leanderkretschmer/lotify/internal/application/auth"
	"github.com/leanderkretschmer/lotify/internal/application/blob"
	"github.com/leanderkretschmer/lotify/internal/application/delivery"
	"github.com/leanderkretschmer/lotify/internal/application/device"
	"github.com/leanderkretschmer/lotify/internal/application/message"
	"github.com/leanderkretschmer/lotify/internal/config"
	jwtinfra "github.com/leanderkretschmer/lotify/internal/infrastructure/jwt"
	"github.com/leanderkretschmer/lotify/internal/ratelimit"
	"github.com/leanderkretschmer/lotify/internal/transport/http/handler"
	appmiddleware "github.com/leanderkretschmer/lotify/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	DeviceRepo     DeviceRepository
	MessageRepo    MessageRepository
	AttachmentRepo AttachmentRepository
	S3Store        ObjectStore
	JWTProvider    *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — shields the public registration endpoint.
	registerRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	// Per-credential fixed-window quota enforced inside the send path.
	sendQuota := ratelimit.NewFixedWindow(cfg.RateLimitMax, cfg.RateLimitWindow)

	registry := delivery.NewRegistry()
	loop := delivery.NewLoop(deps.DeviceRepo, deps.MessageRepo, cfg.DeliveryTick)

	authSvc := auth.NewService(deps.DeviceRepo)
	deviceSvc := device.NewService(deps.DeviceRepo)
	messageSvc := message.NewService(authSvc, deps.DeviceRepo, deps.MessageRepo, sendQuota)
	blobSvc := blob.NewService(authSvc, deps.S3Store, deps.AttachmentRepo)

	healthH := handler.NewHealthHandler()
	deviceH := handler.NewDeviceHandler(deviceSvc)
	messageH := handler.NewMessageHandler(messageSvc)
	blobH := handler.NewBlobHandler(blobSvc)
	liveH := handler.NewLiveHandler(loop, registry)

	r.Get("/health-check/{action}", healthH.Ping)
	r.With(registerRL.Limit).Post("/register", deviceH.Register)
	r.Post("/send", messageH.Send)
	r.Get("/messages/{publicKey}", messageH.List)
	r.Post("/cdn/upload", blobH.Upload)
	r.Get("/cdn/{blobID}", blobH.Download)
	r.Get("/ws/{publicKey}", liveH.Serve)

	// Admin surface requires a JWT provider; without keys it stays unmounted.
	if deps.JWTProvider != nil {
		adminSvc := admin.NewService(admin.ServiceDeps{
			Devices:      deps.DeviceRepo,
			DeviceSvc:    deviceSvc,
			Messages:     deps.MessageRepo,
			Usage:        blobSvc,
			Registry:     registry,
			Signer:       deps.JWTProvider,
			Username:     cfg.AdminUsername,
			PasswordHash: cfg.AdminPasswordHash,
		})
		adminH := handler.NewAdminHandler(adminSvc)

		r.Route("/admin", func(r chi.Router) {
			r.With(registerRL.Limit).Post("/login", adminH.Login)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.Auth(deps.JWTProvider))
				r.Get("/devices", adminH.ListDevices)
				r.Put("/devices/{id}/active", adminH.SetActive)
			})
		})
	}

	return r
}
