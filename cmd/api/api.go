package api

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/snapgram/snapgram-server/service/auth"
	"github.com/snapgram/snapgram-server/service/feed"
	"github.com/snapgram/snapgram-server/service/media"
	"github.com/snapgram/snapgram-server/service/user"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api").Subrouter()

	authService := auth.NewService(s.db, []byte(os.Getenv("SECRET_KEY")))

	userHandler := user.NewHandler(s.db, authService)
	userHandler.RegisterRoutes(subrouter)

	feedHandler := feed.NewHandler(s.db, authService)
	feedHandler.RegisterRoutes(subrouter)

	mediaHandler := media.NewHandler(authService)
	mediaHandler.RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins()),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowCredentials(),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, handlers.LoggingHandler(os.Stdout, cors(router)))
}

func allowedOrigins() []string {
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		return []string{"http://localhost:3000"}
	}
	return strings.Split(origins, ",")
}
