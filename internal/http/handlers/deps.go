package handlers

import (
	"github.com/jmoiron/sqlx"

	"tiendasur/internal/config"
	"tiendasur/internal/feeds"
	"tiendasur/internal/ingest"
	"tiendasur/internal/services"
	"tiendasur/internal/store"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler     *AuthHandler
	ProductHandler  *ProductHandler
	ProviderHandler *ProviderHandler
	UserHandler     *UserHandler
	SettingsHandler *SettingsHandler
	ChatHandler     *ChatHandler
	HealthHandler   *HealthHandler
	RateHandler     *RateHandler

	Engine *ingest.Engine
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	products := store.NewProductStore(db)
	providers := store.NewProviderStore(db)
	users := store.NewUserStore(db)
	settings := store.NewSettingsStore(db)
	chat := store.NewChatStore(db)
	leases := store.NewLeaseStore(db)

	auth := &services.AuthService{
		Users:          users,
		Secret:         []byte(cfg.JWTSecret),
		MasterPassword: cfg.MasterPassword,
	}
	catalog := services.NewCatalogService(products)
	rates := services.NewRateService()

	engine := &ingest.Engine{
		Products:  products,
		Providers: providers,
		Leases:    leases,
		Client:    feeds.NewClient(),
		Creds:     feeds.Credentials{UserID: cfg.ElitUserID, Token: cfg.ElitToken},
		JSONURL:   cfg.ElitJSONURL,
		CSVURL:    cfg.ElitCSVURL,
	}

	return &Deps{
		Auth:            auth,
		AuthHandler:     &AuthHandler{Auth: auth},
		ProductHandler:  &ProductHandler{Catalog: catalog},
		ProviderHandler: &ProviderHandler{Providers: providers, Engine: engine},
		UserHandler:     &UserHandler{Users: users},
		SettingsHandler: &SettingsHandler{Settings: settings},
		ChatHandler:     &ChatHandler{Chat: chat},
		HealthHandler:   &HealthHandler{DB: db},
		RateHandler:     &RateHandler{Rates: rates},
		Engine:          engine,
	}
}
