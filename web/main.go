package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/freelancekenya/kazi/internal/activation"
	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/identity"
	"github.com/freelancekenya/kazi/internal/pkg/logger"
	"github.com/freelancekenya/kazi/internal/session"
	"github.com/freelancekenya/kazi/web/internal/config"
	"github.com/freelancekenya/kazi/web/internal/handlers"
	"github.com/freelancekenya/kazi/web/internal/middleware"
	"github.com/freelancekenya/kazi/web/internal/render"
	websession "github.com/freelancekenya/kazi/web/internal/session"
)

// setupWebLogging configures the global logger for the web service
func setupWebLogging(logLevel, logFormat string) error {
	cfg := logger.Config{
		Level:       logger.ParseLevel(logLevel),
		LogToStderr: true, // Web service always logs to stderr
		Format:      logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)

	return nil
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err = setupWebLogging(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	log := slog.Default().With("component", "web")
	log.Info("starting kazi web client")

	templates, err := render.LoadTemplates(cfg.Templates.Path)
	if err != nil {
		log.Error("failed to load templates", slog.Any("error", err))
		os.Exit(1)
	}

	cookieSecret, err := sessionSecret(cfg.Session.Secret, log)
	if err != nil {
		log.Error("failed to derive session secret", slog.Any("error", err))
		os.Exit(1)
	}
	cookies := websession.NewManager(cookieSecret)

	backend, err := api.NewClient(cfg.Backend.BaseURL, api.WithTimeout(cfg.Backend.Timeout.Std()))
	if err != nil {
		log.Error("failed to create backend client", slog.Any("error", err))
		os.Exit(1)
	}

	var identityOpts []identity.Option
	if cfg.Identity.AuthEndpoint != "" || cfg.Identity.TokenEndpoint != "" {
		identityOpts = append(identityOpts,
			identity.WithEndpoints(cfg.Identity.AuthEndpoint, cfg.Identity.TokenEndpoint))
	}
	provider := identity.NewProvider(cfg.Identity.APIKey, identityOpts...)

	sessions := session.New(provider, backend, slog.Default())
	defer sessions.Close()

	watcher := activation.NewWatcher(backend, slog.Default(),
		activation.WithSchedule(cfg.Activation.PollInterval.Std(), cfg.Activation.PollAttempts))

	var oauthCfg *oauth2.Config
	if cfg.Identity.Google.ClientID != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.Identity.Google.ClientID,
			ClientSecret: cfg.Identity.Google.ClientSecret,
			RedirectURL:  cfg.Identity.Google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	} else {
		log.Warn("no Google OAuth client configured, only email sign-in available")
	}

	h := handlers.New(backend, provider, sessions, cookies, templates, watcher,
		oauthCfg, cfg.Activation.Fee, log)
	guard := middleware.NewGuard(sessions,
		http.HandlerFunc(h.Loading), http.HandlerFunc(h.NotFound), log)

	router := createRouter(h, guard)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("listening", slog.String("address", addr))

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Error("failed to start server", slog.Any("error", err))
		os.Exit(1)
	}
}

// sessionSecret resolves the cookie secret: env var, then config, then a
// random one for development
func sessionSecret(configured string, log *slog.Logger) ([]byte, error) {
	if env := os.Getenv("SESSION_SECRET"); env != "" {
		secret, err := base64.StdEncoding.DecodeString(env)
		if err == nil {
			return secret, nil
		}
		log.Warn("failed to decode SESSION_SECRET env var, trying config", slog.Any("error", err))
	}

	if configured != "" {
		secret, err := base64.StdEncoding.DecodeString(configured)
		if err == nil {
			return secret, nil
		}
		log.Warn("failed to decode session secret from config", slog.Any("error", err))
	}

	log.Warn("no session secret configured, generating random one (cookies won't survive restarts)")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// createRouter sets up the HTTP router with all routes and middleware
func createRouter(h *handlers.Handler, guard *middleware.Guard) http.Handler {
	router := mux.NewRouter()

	// Static files with version path: /static/{version}/...
	staticDir := http.Dir("web/static")
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(r.URL.Path, "/", 2)
		if len(parts) == 2 {
			r.URL.Path = "/" + parts[1]
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		http.FileServer(staticDir).ServeHTTP(w, r)
	})))

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Auth endpoints outside the guarded screen set
	router.HandleFunc("/login/email", h.LoginEmail).Methods("POST")
	router.HandleFunc("/auth/google", h.LoginGoogle).Methods("GET")
	router.HandleFunc("/auth/callback", h.AuthCallback).Methods("GET")
	router.HandleFunc("/logout", h.Logout).Methods("GET", "POST")

	// Screen routes, all evaluated by the route guard
	screen := func(path string, fn http.HandlerFunc, methods ...string) {
		router.Handle(path, guard.Authorize(fn)).Methods(methods...)
	}
	screen("/", h.Home, "GET")
	screen("/login", h.Login, "GET")
	screen("/complete-profile", h.CompleteProfile, "GET")
	screen("/complete-profile", h.CompleteProfileSubmit, "POST")
	screen("/activation", h.Activation, "GET")
	screen("/activation/pay", h.ActivationPay, "POST")
	screen("/activation/status", h.ActivationStatus, "GET")
	screen("/dashboard", h.Dashboard, "GET")
	screen("/jobs", h.Jobs, "GET")
	screen("/jobs/{id}/{slug}", h.Job, "GET")
	screen("/jobs/apply", h.Apply, "POST")
	screen("/jobs/post", h.PostJob, "POST")
	screen("/wallet", h.Wallet, "GET")
	screen("/wallet/withdraw", h.Withdraw, "POST")
	screen("/messages", h.Messages, "GET")
	screen("/messages/send", h.SendMessage, "POST")
	screen("/profile", h.Profile, "GET")
	screen("/profile/update", h.UpdateProfile, "POST")
	screen("/profile/skills", h.AddSkill, "POST")
	screen("/profile/portfolio", h.AddPortfolioItem, "POST")

	// Anything else falls through to the guard's catch-all policy
	router.PathPrefix("/").Handler(guard.Authorize(http.HandlerFunc(h.NotFound)))

	return middleware.LogRequest(router)
}
