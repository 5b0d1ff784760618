package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/notify"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/service/anonymous"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/stock"
)

type cartHandler struct {
	catalog   catalogService
	carts     cartrepo.Repository
	publisher checkout.Publisher
	logger    *zap.SugaredLogger
}

type cartResponse struct {
	Session    string            `json:"session"`
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Decision   string            `json:"decision,omitempty"`
	Notices    []notify.Notice   `json:"notices"`
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// open loads the session's cart. Notices raised while serving the request are recorded
// for the response and logged.
func (h *cartHandler) open(c *gin.Context) (*cartsvc.Store, *notify.Recorder) {
	rec := &notify.Recorder{}
	record := cartrepo.Bind(h.carts, anonymous.RecordKey(sessionID(c)))
	store := cartsvc.New(record, notify.Tee(rec, notify.NewLogger(h.logger)), h.logger)
	store.Load(c.Request.Context())
	return store, rec
}

func (h *cartHandler) respond(c *gin.Context, status int, store *cartsvc.Store, rec *notify.Recorder, decision *stock.Decision) {
	cart := store.Cart()
	resp := cartResponse{
		Session:    sessionID(c),
		Items:      cart.Items,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
		Notices:    rec.Notices(),
	}
	if decision != nil {
		resp.Decision = decision.String()
	}
	c.JSON(status, resp)
}

func (h *cartHandler) show(c *gin.Context) {
	store, rec := h.open(c)
	h.respond(c, http.StatusOK, store, rec, nil)
}

func (h *cartHandler) add(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	product, err := h.catalog.Product(req.ProductID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	store, rec := h.open(c)
	decision, err := store.Add(c.Request.Context(), product, quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, store, rec, &decision)
}

func (h *cartHandler) update(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	store, rec := h.open(c)
	decision, err := store.UpdateQuantity(c.Request.Context(), c.Param("productId"), *req.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, store, rec, &decision)
}

func (h *cartHandler) remove(c *gin.Context) {
	store, rec := h.open(c)
	if err := store.Remove(c.Request.Context(), c.Param("productId")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, store, rec, nil)
}

func (h *cartHandler) clear(c *gin.Context) {
	store, rec := h.open(c)
	if err := store.Clear(c.Request.Context()); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, store, rec, nil)
}

// checkout hands the cart to the external checkout. The cart is kept until the
// checkout reports completion.
func (h *cartHandler) checkout(c *gin.Context) {
	store, _ := h.open(c)
	handoff, err := checkout.NewHandoff(sessionID(c), store.Cart(), time.Now())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.publisher.Publish(c.Request.Context(), handoff); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, handoff)
}

func (h *cartHandler) complete(c *gin.Context) {
	store, rec := h.open(c)
	if err := store.Clear(c.Request.Context()); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.logger.Infow("cart: checkout completed", "session", sessionID(c))
	h.respond(c, http.StatusOK, store, rec, nil)
}
