// Package httpapi exposes the booking API over HTTP with gin.
package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/services"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	devices  *services.DeviceService
	bookings *services.BookingService
	users    *services.UserService
	health   Pinger
	logger   logging.Logger
}

func NewHandler(ds *services.DeviceService, bs *services.BookingService, us *services.UserService, p Pinger, l logging.Logger) *Handler {
	return &Handler{
		devices:  ds,
		bookings: bs,
		users:    us,
		health:   p,
		logger:   l.With("module", "http_api"),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// pathID reads the :id parameter. Ids that do not parse cannot exist, so
// they are reported as not found.
func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithCode(c, http.StatusNotFound, CodeNotFound, "no such id: "+c.Param("id"))
		return 0, false
	}
	return id, true
}

func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithCode(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// Health answers 200 while the blob store responds.
func (h *Handler) Health(c *gin.Context) {
	if err := h.health.Ping(c.Request.Context()); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
