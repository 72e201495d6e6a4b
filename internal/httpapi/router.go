package httpapi

import (
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"appointment-booking-api/internal/handler"
	"appointment-booking-api/internal/middleware"
	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/service"
)

type Options struct {
	AllowedOrigins []string
	// Limiter throttles signup and login. Nil disables throttling.
	Limiter *middleware.RateLimiter
	// TrustedProxies may set X-Forwarded-For. Empty means none.
	TrustedProxies []string
	// GRPCWeb, when set, serves gRPC-Web calls under /booking.v1.BookingService/.
	GRPCWeb http.Handler
}

func NewRouter(sched *service.Scheduler, accounts *service.Accounts, opts Options) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		log.Printf("trusted proxies %v: %v", opts.TrustedProxies, err)
		r.SetTrustedProxies(nil)
	}
	r.Use(gin.Logger(), gin.Recovery())

	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = opts.AllowedOrigins
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Grpc-Web", "X-User-Agent"}
	cfg.ExposeHeaders = []string{"Grpc-Status", "Grpc-Message"}
	cfg.MaxAge = 24 * time.Hour
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
	}
	r.Use(cors.New(cfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	limit := func(c *gin.Context) { c.Next() }
	if opts.Limiter != nil {
		limit = middleware.Limit(opts.Limiter)
	}

	ah := &authHandler{accounts: accounts}
	authGroup := r.Group("/auth")
	authGroup.POST("/signup", limit, ah.signup)
	authGroup.POST("/login", limit, ah.login)

	h := &appointmentHandler{sched: sched}
	appts := r.Group("/appointments")
	appts.POST("/book", h.book)
	appts.GET("/available", h.available)
	appts.GET("/user/:email", h.forUser)
	appts.GET("/getappointment/:id", h.get)
	appts.POST("/cancel/:id", middleware.RequireRole(accounts, model.RoleUser), h.cancel)

	admin := appts.Group("/admin", middleware.RequireRole(accounts, model.RoleAdmin))
	admin.GET("/all", h.all)
	admin.POST("/add", h.add)
	admin.PUT("/update/:id", h.update)
	admin.DELETE("/delete/:id", h.remove)

	if opts.GRPCWeb != nil {
		r.POST("/"+handler.ServiceName+"/:method", gin.WrapH(opts.GRPCWeb))
	}

	return r
}
