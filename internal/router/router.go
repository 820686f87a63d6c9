package router

import (
	"net/http"

	"menuely/internal/handler"
	"menuely/internal/middleware"
	"menuely/internal/repository"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const apiPrefix = "/api"

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Menus      *handler.MenuHandler
	Categories *handler.CategoryHandler
	Products   *handler.ProductHandler
	Orders     *handler.OrderHandler

	// Static serves locally stored images under /static/. Optional.
	Static http.Handler
}

// Identity resolves the caller headers to a principal.
type Identity struct {
	Restaurants repository.RestaurantRepository
	Users       repository.UserRepository
	Reader      repository.Querier
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, identity Identity, apiKey string, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check endpoint (no authentication required)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}).Methods(http.MethodGet)

	if h.Static != nil {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", h.Static)).Methods(http.MethodGet, http.MethodHead)
	}

	// Full paths on the root router. Subrouter routes share the prefix matcher,
	// which clears a method mismatch and turns 405 into 404.
	r.HandleFunc(apiPrefix+"/menus", h.Menus.List).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/menus", h.Menus.Create).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/menus/{id:[0-9]+}", h.Menus.GetByID).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/menus/{id:[0-9]+}", h.Menus.Update).Methods(http.MethodPatch)
	r.HandleFunc(apiPrefix+"/menus/{id:[0-9]+}", h.Menus.Delete).Methods(http.MethodDelete)

	r.HandleFunc(apiPrefix+"/categories", h.Categories.List).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/categories", h.Categories.Create).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/categories/{id:[0-9]+}", h.Categories.GetByID).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/categories/{id:[0-9]+}", h.Categories.Update).Methods(http.MethodPatch)
	r.HandleFunc(apiPrefix+"/categories/{id:[0-9]+}", h.Categories.Delete).Methods(http.MethodDelete)

	r.HandleFunc(apiPrefix+"/products", h.Products.List).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/products", h.Products.Create).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/products/{id:[0-9]+}", h.Products.GetByID).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/products/{id:[0-9]+}", h.Products.Update).Methods(http.MethodPatch)
	r.HandleFunc(apiPrefix+"/products/{id:[0-9]+}", h.Products.Delete).Methods(http.MethodDelete)

	r.HandleFunc(apiPrefix+"/orders", h.Orders.Create).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/orders/user", h.Orders.ListUserOrders).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/orders/restaurant", h.Orders.ListRestaurantOrders).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/orders/{id:[0-9]+}/accept", h.Orders.Accept).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/orders/{id:[0-9]+}/user", h.Orders.GetUserOrder).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/orders/{id:[0-9]+}/restaurant", h.Orders.GetRestaurantOrder).Methods(http.MethodGet)

	// Apply middleware in order: Recovery -> CorrelationID -> Logging -> CORS -> APIKeyAuth -> Authenticate
	var handler http.Handler = r
	handler = middleware.Authenticate(identity.Restaurants, identity.Users, identity.Reader, logger)(handler)
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS()(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.CorrelationID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
