package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"appointment-booking-api/internal/middleware"
	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/service"
)

type appointmentHandler struct {
	sched *service.Scheduler
}

type bookBody struct {
	AppointmentID string `json:"appointmentId"`
	Email         string `json:"email"`
	Name          string `json:"name"`
}

// slotBody decodes date and times through their JSON string forms.
type slotBody struct {
	Date      *model.Date  `json:"date"`
	StartTime *model.Clock `json:"startTime"`
	EndTime   *model.Clock `json:"endTime"`
}

func (b slotBody) slot() (service.Slot, bool) {
	if b.Date == nil || b.StartTime == nil || b.EndTime == nil {
		return service.Slot{}, false
	}
	return service.Slot{Date: *b.Date, Start: *b.StartTime, End: *b.EndTime}, true
}

func (h *appointmentHandler) book(c *gin.Context) {
	var body bookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	err := h.sched.Book(c.Request.Context(), body.AppointmentID, service.BookRequest{
		Email: body.Email,
		Name:  body.Name,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Appointment booked successfully!")
}

func (h *appointmentHandler) available(c *gin.Context) {
	list, err := h.sched.Available(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *appointmentHandler) forUser(c *gin.Context) {
	list, err := h.sched.ForUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *appointmentHandler) get(c *gin.Context) {
	a, err := h.sched.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *appointmentHandler) cancel(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c.Request.Context())
	if err := h.sched.Cancel(c.Request.Context(), c.Param("id"), id); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Appointment canceled successfully!")
}

func (h *appointmentHandler) all(c *gin.Context) {
	list, err := h.sched.All(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *appointmentHandler) add(c *gin.Context) {
	var body slotBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "date must be YYYY-MM-DD and times HH:MM[:SS]")
		return
	}
	slot, ok := body.slot()
	if !ok {
		badRequest(c, "date, startTime and endTime are required")
		return
	}
	if _, err := h.sched.Create(c.Request.Context(), slot); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Appointment added successfully!")
}

func (h *appointmentHandler) update(c *gin.Context) {
	var body slotBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "date must be YYYY-MM-DD and times HH:MM[:SS]")
		return
	}
	slot, ok := body.slot()
	if !ok {
		badRequest(c, "date, startTime and endTime are required")
		return
	}
	if _, err := h.sched.Update(c.Request.Context(), c.Param("id"), slot); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Appointment updated successfully!")
}

func (h *appointmentHandler) remove(c *gin.Context) {
	if err := h.sched.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Appointment deleted successfully!")
}
