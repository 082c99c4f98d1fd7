package di

import (
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"uslugo/internal/chat"
	"uslugo/internal/common"
	"uslugo/internal/config"
	"uslugo/internal/dbmysql"
	"uslugo/internal/listing"
	"uslugo/internal/realtime"
	"uslugo/internal/user"
)

// Application bundles everything the API binary needs.
type Application struct {
	Config *config.Config
	DB     *gorm.DB
	Hub    *realtime.Hub
	Router *mux.Router
}

// ProvideDB opens the MySQL connection and hands wire a cleanup.
func ProvideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := dbmysql.NewMySQL(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// NewRouter assembles the HTTP surface. Browsing stays public; every
// other route sits behind the auth middleware.
func NewRouter(userH *user.Handler, listingH *listing.Handler, chatH *chat.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(common.LoggingMiddleware)

	public := r.PathPrefix("/api").Subrouter()
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(common.AuthMiddleware)

	userH.Register(public, protected)
	listingH.Register(public, protected)
	chatH.Register(public, protected)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	return r
}
