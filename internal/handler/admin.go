package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference/internal/coupon"
	"conference/internal/events"
	"conference/internal/model"
)

func (h *Handler) adminDashboard(c *gin.Context) {
	counts, err := h.svc.Dashboard.Admin(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) chairDashboard(c *gin.Context) {
	counts, err := h.svc.Dashboard.Chair(c.Request.Context(), role(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) userDashboard(c *gin.Context) {
	view, err := h.svc.Dashboard.User(c.Request.Context(), role(c).Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) createCoupon(c *gin.Context) {
	var req coupon.CreateInput
	if !bind(c, &req) {
		return
	}
	cp, err := h.svc.Coupons.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cp)
}

func (h *Handler) listCoupons(c *gin.Context) {
	list, err := h.svc.Coupons.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": list})
}

func (h *Handler) deleteCoupon(c *gin.Context) {
	if err := h.svc.Coupons.Delete(c.Request.Context(), c.Param("code")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listContacts(c *gin.Context) {
	list, err := h.svc.Contacts.List(c.Request.Context(), model.ContactStatus(c.Query("status")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": list})
}

func (h *Handler) updateContact(c *gin.Context) {
	var req struct {
		Status model.ContactStatus `json:"status"`
	}
	if !bind(c, &req) {
		return
	}
	sub, err := h.svc.Contacts.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) deleteContact(c *gin.Context) {
	if err := h.svc.Contacts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createEvent(c *gin.Context) {
	var req events.CreateInput
	if !bind(c, &req) {
		return
	}
	e, err := h.svc.Events.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}
