package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"flatfinder/internal/infra/obs"
)

const apiPrefix = "/api/v1"

// Handlers groups the HTTP surfaces. A nil surface is not mounted.
type Handlers struct {
	Auth           AuthHTTP
	Listing        ListingHTTP
	Availability   AvailabilityHTTP
	Booking        BookingHTTP
	Complaint      ComplaintHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

type ServerConfig struct {
	Env  string
	Addr string
}

func NewServer(cfg ServerConfig, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := ginMode(cfg.Env)
	gin.SetMode(mode)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode, "addr", cfg.Addr)
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type route struct {
	method string
	path   string
	handle gin.HandlerFunc
}

// routes lists the API endpoints relative to apiPrefix.
func (h Handlers) routes() []route {
	var rs []route
	add := func(method, path string, handle gin.HandlerFunc) {
		rs = append(rs, route{method: method, path: path, handle: handle})
	}
	if a := h.Auth; a != nil {
		add(http.MethodPost, "/auth/register", a.Register)
		add(http.MethodPost, "/auth/login", a.Login)
		add(http.MethodPost, "/auth/logout", a.Logout)
		add(http.MethodGet, "/auth/me", a.Me)
	}
	if l := h.Listing; l != nil {
		add(http.MethodGet, "/listings", l.Catalog)
		add(http.MethodPost, "/listings", l.Create)
		add(http.MethodGet, "/listings/:id", l.Get)
		add(http.MethodPut, "/listings/:id", l.Update)
		add(http.MethodPost, "/listings/:id/photos", l.AddPhoto)
		add(http.MethodGet, "/me/listings", l.Mine)
	}
	if av := h.Availability; av != nil {
		add(http.MethodGet, "/listings/:id/availability", av.Get)
		add(http.MethodPost, "/listings/:id/availability", av.Add)
		add(http.MethodPut, "/listings/:id/availability", av.Replace)
		add(http.MethodDelete, "/listings/:id/availability/:index", av.Remove)
	}
	if b := h.Booking; b != nil {
		add(http.MethodPost, "/listings/:id/bookings", b.Create)
		add(http.MethodGet, "/listings/:id/bookings", b.ListForListing)
		add(http.MethodGet, "/me/bookings", b.Mine)
	}
	if c := h.Complaint; c != nil {
		add(http.MethodPost, "/complaints", c.File)
	}
	if ad := h.Admin; ad != nil {
		add(http.MethodGet, "/admin/listings", ad.Listings)
		add(http.MethodPost, "/admin/listings/:id/status", ad.ReviewListing)
		add(http.MethodGet, "/admin/complaints", ad.Complaints)
		add(http.MethodPost, "/admin/complaints/:id/status", ad.TransitionComplaint)
	}
	return rs
}

func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(obsMW.RequestID(), obsMW.Recovery(), obsMW.AccessLog(), cors.New(corsConfig()))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	registerSwaggerRoutes(router)
	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group(apiPrefix)
	for _, r := range h.routes() {
		api.Handle(r.method, r.path, r.handle)
	}
	return router
}

func corsConfig() cors.Config {
	return cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", idempotencyHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "Location", obs.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
}

func ginMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev":
		return gin.DebugMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
