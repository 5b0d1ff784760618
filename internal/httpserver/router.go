package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

type catalogService interface {
	Products() []domain.Product
	Categories() []domain.Category
	Logo() domain.Logo
	Product(id string) (domain.Product, error)
	List(q catalog.Query) []domain.Product
	Groups(term string) []catalog.Group
	Refresh(ctx context.Context) (bool, error)
	RefreshedAt() time.Time
}

type sessionService interface {
	Issue() (string, error)
	Normalize(raw string) (string, error)
}

// Deps groups the services the handlers call.
type Deps struct {
	Catalog   catalogService
	Carts     cartrepo.Repository
	Sessions  sessionService
	Publisher checkout.Publisher
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.SugaredLogger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if deps.Catalog == nil || deps.Carts == nil || deps.Sessions == nil || deps.Publisher == nil {
		return nil, errors.New("httpserver: missing dependencies")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(accessLog(logger), gin.Recovery())
	if len(corsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  corsOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", sessionHeader},
			ExposeHeaders: []string{sessionHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	var ping pinger
	if db != nil {
		ping = db
	}
	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(ping, deps.Catalog))

	ch := &catalogHandler{svc: deps.Catalog, logger: logger}
	cat := router.Group("/catalog")
	cat.GET("/products", ch.list)
	cat.GET("/products/:id", ch.get)
	cat.GET("/categories", ch.categories)
	cat.GET("/groups", ch.groups)
	cat.GET("/logo", ch.logo)
	cat.POST("/refresh", ch.refresh)

	h := &cartHandler{catalog: deps.Catalog, carts: deps.Carts, publisher: deps.Publisher, logger: logger}
	cart := router.Group("/cart", sessionMiddleware(deps.Sessions, logger))
	cart.GET("", h.show)
	cart.DELETE("", h.clear)
	cart.POST("/items", h.add)
	cart.PATCH("/items/:productId", h.update)
	cart.DELETE("/items/:productId", h.remove)
	cart.POST("/checkout", h.checkout)
	cart.POST("/checkout/complete", h.complete)

	return router, nil
}

func accessLog(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infow("http: request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// writeError maps domain errors onto status codes; anything unexpected is a 500 with a
// generic body.
func writeError(c *gin.Context, logger *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Errorw("http: request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
