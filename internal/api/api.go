package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/avdeeva/spendbot/internal/config"
	"github.com/avdeeva/spendbot/internal/db"
	"github.com/avdeeva/spendbot/internal/ledger"
)

// API is a read-only web view of a user's recorded data. Login goes through
// Discord OAuth2; the transaction flow itself lives in the bot.
type API struct {
	router    *mux.Router
	db        *db.DB
	ledger    *ledger.Service
	config    *config.Config
	oauth     *oauth2.Config
	jwtSecret []byte
	log       zerolog.Logger
}

func New(cfg *config.Config, database *db.DB, ledgerSvc *ledger.Service, log zerolog.Logger) *API {
	api := &API{
		router:    mux.NewRouter(),
		db:        database,
		ledger:    ledgerSvc,
		config:    cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		log:       log,
		oauth: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/categories", a.handleListCategories).Methods("GET")
	protected.HandleFunc("/transactions", a.handleListTransactions).Methods("GET")
}

func (a *API) Start() error {
	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(a.router)

	a.log.Info().Str("bind", a.config.WebBind).Msg("API server listening")
	return http.ListenAndServe(a.config.WebBind, handler)
}
