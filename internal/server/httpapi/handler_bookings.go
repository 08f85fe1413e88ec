package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/server/services"
	"github.com/dmitrijs2005/rackbook/internal/timex"
)

type createBookingRequest struct {
	UserID   int64  `json:"userId"`
	DeviceID int64  `json:"deviceId"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Reason   string `json:"reason"`
}

type updateBookingRequest struct {
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Reason *string `json:"reason"`
}

// ListBookings returns every booking, or one device's with ?deviceId=.
func (h *Handler) ListBookings(c *gin.Context) {
	var deviceID int64
	if raw := c.Query("deviceId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abortWithCode(c, http.StatusBadRequest, CodeInvalidRequest, "deviceId must be an integer")
			return
		}
		deviceID = id
	}

	bookings, err := h.bookings.List(c.Request.Context(), deviceID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	b, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var in createBookingRequest
	if !h.bindJSON(c, &in) {
		return
	}
	start, end, ok := h.parseInterval(c, in.Start, in.End)
	if !ok {
		return
	}

	b, err := h.bookings.Create(c.Request.Context(), identityFrom(c), services.BookingRequest{
		UserID:   in.UserID,
		DeviceID: in.DeviceID,
		Start:    start,
		End:      end,
		Reason:   in.Reason,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var in updateBookingRequest
	if !h.bindJSON(c, &in) {
		return
	}
	start, end, ok := h.parseInterval(c, in.Start, in.End)
	if !ok {
		return
	}

	b, err := h.bookings.Update(c.Request.Context(), identityFrom(c), id, services.BookingChange{
		Start:  start,
		End:    end,
		Reason: in.Reason,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.bookings.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "booking deleted"})
}

// parseInterval reads start and end. Unparseable timestamps are reported as
// invalid_interval, the same as an empty or reversed interval.
func (h *Handler) parseInterval(c *gin.Context, rawStart, rawEnd string) (time.Time, time.Time, bool) {
	start, err := timex.ParseInstant(rawStart)
	if err != nil {
		abortWithCode(c, http.StatusBadRequest, common.Reason(common.ErrInvalidInterval), "start: "+err.Error())
		return time.Time{}, time.Time{}, false
	}
	end, err := timex.ParseInstant(rawEnd)
	if err != nil {
		abortWithCode(c, http.StatusBadRequest, common.Reason(common.ErrInvalidInterval), "end: "+err.Error())
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
