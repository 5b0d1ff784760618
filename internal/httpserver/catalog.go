package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

type catalogHandler struct {
	svc    catalogService
	logger *zap.SugaredLogger
}

// list serves the home and category views. Without a category the homepage gate applies
// unless homepage=false is passed.
func (h *catalogHandler) list(c *gin.Context) {
	homepage := true
	if raw := c.Query("homepage"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "homepage must be a boolean"})
			return
		}
		homepage = v
	}
	q := catalog.Query{
		SearchTerm:   c.Query("search"),
		CategoryID:   c.Query("category"),
		HomepageOnly: homepage,
	}
	products := h.svc.List(q)
	c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products)})
}

func (h *catalogHandler) get(c *gin.Context) {
	p, err := h.svc.Product(c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *catalogHandler) categories(c *gin.Context) {
	categories := h.svc.Categories()
	if categories == nil {
		categories = []domain.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"results": categories, "count": len(categories)})
}

func (h *catalogHandler) groups(c *gin.Context) {
	groups := h.svc.Groups(c.Query("search"))
	if groups == nil {
		groups = []catalog.Group{}
	}
	c.JSON(http.StatusOK, gin.H{"results": groups})
}

func (h *catalogHandler) logo(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Logo())
}

func (h *catalogHandler) refresh(c *gin.Context) {
	applied, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"applied":    applied,
		"products":   len(h.svc.Products()),
		"categories": len(h.svc.Categories()),
	})
}
