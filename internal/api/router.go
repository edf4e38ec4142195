package api

import (
	"database/sql"
	"net/http"

	"github.com/jusmik/outpost/internal/feed"
	"github.com/jusmik/outpost/internal/game"
	"github.com/jusmik/outpost/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, svc *game.Service, hub *feed.Hub) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	playersHandler := &PlayersHandler{DB: db}
	profileHandler := &ProfileHandler{DB: db}
	catalogHandler := &CatalogHandler{Catalog: svc.Catalog}
	inventoryHandler := &InventoryHandler{Game: svc}
	buildingsHandler := &BuildingsHandler{Game: svc}
	tradesHandler := &TradesHandler{Game: svc}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: account creation and login.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Players (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(playersHandler.List))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(playersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(playersHandler.UpdateRole))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(playersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(playersHandler.Delete))))

	// Profile.
	mux.Handle("GET /api/profile", authMW(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("PUT /api/profile/avatar", authMW(http.HandlerFunc(profileHandler.UploadAvatar)))
	mux.Handle("GET /api/profile/avatar/{id}", authMW(http.HandlerFunc(profileHandler.GetAvatar)))

	// Catalog (read only, fixed at startup).
	mux.Handle("GET /api/catalog/items", authMW(http.HandlerFunc(catalogHandler.Items)))
	mux.Handle("GET /api/catalog/buildings", authMW(http.HandlerFunc(catalogHandler.Buildings)))

	// Inventory: own ledger for everyone, grants admin only.
	mux.Handle("GET /api/inventory", authMW(http.HandlerFunc(inventoryHandler.List)))
	mux.Handle("POST /api/inventory/grant", authMW(requireAdmin(http.HandlerFunc(inventoryHandler.Grant))))

	// Buildings.
	mux.Handle("GET /api/buildings", authMW(http.HandlerFunc(buildingsHandler.List)))
	mux.Handle("POST /api/buildings", authMW(http.HandlerFunc(buildingsHandler.Create)))
	mux.Handle("GET /api/buildings/{id}", authMW(http.HandlerFunc(buildingsHandler.Get)))
	mux.Handle("POST /api/buildings/{id}/complete", authMW(http.HandlerFunc(buildingsHandler.Complete)))
	mux.Handle("POST /api/buildings/{id}/upgrade", authMW(http.HandlerFunc(buildingsHandler.Upgrade)))
	mux.Handle("DELETE /api/buildings/{id}", authMW(http.HandlerFunc(buildingsHandler.Delete)))

	// Trades.
	mux.Handle("GET /api/trades", authMW(http.HandlerFunc(tradesHandler.List)))
	mux.Handle("POST /api/trades", authMW(http.HandlerFunc(tradesHandler.Create)))
	mux.Handle("GET /api/trades/history", authMW(http.HandlerFunc(tradesHandler.History)))
	mux.Handle("POST /api/trades/history/{id}/rating", authMW(http.HandlerFunc(tradesHandler.Rate)))
	mux.Handle("GET /api/trades/{id}", authMW(http.HandlerFunc(tradesHandler.Get)))
	mux.Handle("POST /api/trades/{id}/accept", authMW(http.HandlerFunc(tradesHandler.Accept)))
	mux.Handle("POST /api/trades/{id}/cancel", authMW(http.HandlerFunc(tradesHandler.Cancel)))

	// Live event feed.
	mux.Handle("GET /api/feed", authMW(http.HandlerFunc(hub.Serve)))

	return mux
}
