package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference/internal/contact"
	"conference/internal/coupon"
	"conference/internal/payment"
)

func (h *Handler) validateCoupon(c *gin.Context) {
	var req coupon.ValidateInput
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Coupons.Validate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) submitContact(c *gin.Context) {
	var req contact.SubmitInput
	if !bind(c, &req) {
		return
	}
	sub, err := h.svc.Contacts.Submit(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID, "status": sub.Status})
}

func (h *Handler) listEvents(c *gin.Context) {
	list, err := h.svc.Events.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}

func (h *Handler) getEvent(c *gin.Context) {
	e, err := h.svc.Events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) createOrder(c *gin.Context) {
	var req payment.OrderInput
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Payments.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) paymentCallback(c *gin.Context) {
	var req payment.CallbackInput
	if !bind(c, &req) {
		return
	}
	p, err := h.svc.Payments.VerifyCallback(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payment": p})
}
