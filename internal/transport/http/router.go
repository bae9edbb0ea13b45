package http

import (
	"net/http"

	"github.com/entrepreneur-award/award-api/internal/application/auth"
	"github.com/entrepreneur-award/award-api/internal/application/nomination"
	"github.com/entrepreneur-award/award-api/internal/application/notification"
	"github.com/entrepreneur-award/award-api/internal/application/otp"
	"github.com/entrepreneur-award/award-api/internal/application/user"
	"github.com/entrepreneur-award/award-api/internal/config"
	"github.com/entrepreneur-award/award-api/internal/domain"
	jwtinfra "github.com/entrepreneur-award/award-api/internal/infrastructure/jwt"
	"github.com/entrepreneur-award/award-api/internal/transport/http/handler"
	appmiddleware "github.com/entrepreneur-award/award-api/internal/transport/http/middleware"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo       UserRepository
	OTPRepo        OTPRepository
	NominationRepo NominationRepository
	Notifier       notification.Service
	JWTProvider    *jwtinfra.Provider
}

// NewRouter builds the application router. The returned stop function
// releases the router's background workers.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, func()) {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if cfg.SentryDSN != "" {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, on the unauthenticated credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10,
		appmiddleware.ParseTrustedProxies(cfg.TrustedProxies)...)

	nominationSvc := nomination.NewService(nomination.ServiceDeps{
		Store:    deps.NominationRepo,
		Users:    deps.UserRepo,
		Notifier: deps.Notifier,
		AppURL:   cfg.AppURL,
	})
	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:    deps.OTPRepo,
		Notifier: deps.Notifier,
		Config: otp.Config{
			TTL:          cfg.OTPTTL,
			SupportEmail: cfg.SupportEmail,
			SMSEnabled:   cfg.OTPSMSEnabled,
		},
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:   deps.UserRepo,
		OTP:        otpSvc,
		Reconciler: nominationSvc,
		BcryptCost: cfg.BcryptCost,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		Users:      userSvc,
		OTP:        otpSvc,
		Tokens:     deps.JWTProvider,
		Reconciler: nominationSvc,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	nominationH := handler.NewNominationHandler(nominationSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.With(sensitiveRL.Limit).Post("/forgot-password", authH.ForgotPassword)
			r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
			r.With(sensitiveRL.Limit).Post("/reset-password", authH.ResetPassword)
			r.With(sensitiveRL.Limit).Post("/refresh", authH.Refresh)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/signup", userH.Signup)

			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.With(appmiddleware.RequireCapability(domain.CapViewOwnProfile)).Get("/me", userH.Me)
				r.With(appmiddleware.RequireCapability(domain.CapViewOwnProfile)).Post("/me/submit", userH.Submit)
				r.With(appmiddleware.RequireCapability(domain.CapListUsers)).Get("/", userH.List)
				r.With(appmiddleware.RequireCapability(domain.CapAssignRole)).Put("/{id}/role", userH.AssignRole)
			})
		})

		r.Route("/nominations", func(r chi.Router) {
			r.Use(authMw)
			r.Use(appmiddleware.RequireCapability(domain.CapNominate))
			r.Post("/", nominationH.Create)
			r.Get("/", nominationH.List)
		})
	})

	return r, sensitiveRL.Stop
}
