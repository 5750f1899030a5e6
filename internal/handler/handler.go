// Package handler exposes the services over HTTP with gin.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"conference/internal/apperr"
	"conference/internal/attendance"
	"conference/internal/auth"
	"conference/internal/contact"
	"conference/internal/coupon"
	"conference/internal/dashboard"
	"conference/internal/events"
	"conference/internal/payment"
	"conference/internal/registration"
	"conference/internal/scoring"
)

// Services bundles the domain services the handlers call.
type Services struct {
	Registrations *registration.Service
	Attendance    *attendance.Service
	Coupons       *coupon.Service
	Scoring       *scoring.Service
	Dashboard     *dashboard.Service
	Events        *events.Service
	Contacts      *contact.Service
	Payments      *payment.Service
}

// Handler holds the HTTP handlers.
type Handler struct {
	svc Services
	log zerolog.Logger
}

func New(svc Services, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts every route on r. authn must authenticate the session and
// store its role (see auth.Middleware).
func (h *Handler) Register(r gin.IRouter, authn gin.HandlerFunc) {
	r.POST("/registrations", h.createRegistration)
	r.POST("/validate-coupon", h.validateCoupon)
	r.POST("/contact", h.submitContact)
	r.GET("/events", h.listEvents)
	r.GET("/events/:id", h.getEvent)
	r.POST("/payments/order", h.createOrder)
	r.POST("/payments/callback", h.paymentCallback)

	session := r.Group("", authn)
	session.GET("/registrations/:id", h.getRegistration)
	session.GET("/dashboard/me", h.userDashboard)

	staff := session.Group("", auth.Require(auth.KindAdmin, auth.KindChair))
	staff.GET("/registrations", h.listRegistrations)
	staff.POST("/checkin", h.checkIn)
	staff.POST("/checkin/undo", h.undoCheckIn)
	staff.POST("/checkin/qr", h.checkInQR)
	staff.POST("/bulk-checkin", h.bulkCheckIn)
	staff.GET("/admin/attendance", h.listAttendance)
	staff.POST("/admin/attendance", h.recordAttendance)
	staff.PUT("/admin/attendance", h.updateAttendance)
	staff.POST("/scoring/submit", h.submitScore)
	staff.GET("/scoring/leaderboard", h.leaderboard)
	staff.GET("/dashboard/chair", h.chairDashboard)

	admin := session.Group("", auth.Require(auth.KindAdmin))
	admin.PUT("/registrations/:id", h.updateRegistration)
	admin.DELETE("/registrations/:id", h.deleteRegistration)
	admin.GET("/dashboard/admin", h.adminDashboard)
	admin.POST("/admin/coupons", h.createCoupon)
	admin.GET("/admin/coupons", h.listCoupons)
	admin.DELETE("/admin/coupons/:code", h.deleteCoupon)
	admin.GET("/admin/contacts", h.listContacts)
	admin.PUT("/admin/contacts/:id", h.updateContact)
	admin.DELETE("/admin/contacts/:id", h.deleteContact)
	admin.POST("/admin/events", h.createEvent)
}

// bind decodes the JSON body into dst, replying 400 on malformed input.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return false
	}
	return true
}

// fail maps err onto the HTTP error taxonomy.
func (h *Handler) fail(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		body := gin.H{"error": ve.Message}
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	default:
		_ = c.Error(err)
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// role returns the authenticated role. Routes mounted under the session
// group always have one.
func role(c *gin.Context) auth.Role {
	r, _ := auth.RoleFrom(c)
	return r
}
