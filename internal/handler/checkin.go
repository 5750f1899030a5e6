package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"conference/internal/apperr"
	"conference/internal/attendance"
	"conference/internal/validation"
)

type checkInRequest struct {
	RegistrationID string `json:"registrationId" validate:"required"`
}

type qrRequest struct {
	Payload string `json:"payload" validate:"required,max=512"`
}

type bulkRequest struct {
	RegistrationIDs []string `json:"registrationIds" validate:"required,min=1,max=1000,dive,required"`
}

func (h *Handler) checkIn(c *gin.Context) {
	var req checkInRequest
	if !bind(c, &req) {
		return
	}
	if err := validation.Struct(c.Request.Context(), req); err != nil {
		h.fail(c, err)
		return
	}
	r, err := h.svc.Attendance.CheckIn(c.Request.Context(), role(c), req.RegistrationID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "registration": r})
}

func (h *Handler) undoCheckIn(c *gin.Context) {
	var req checkInRequest
	if !bind(c, &req) {
		return
	}
	if err := validation.Struct(c.Request.Context(), req); err != nil {
		h.fail(c, err)
		return
	}
	r, err := h.svc.Attendance.UndoCheckIn(c.Request.Context(), role(c), req.RegistrationID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "registration": r})
}

func (h *Handler) checkInQR(c *gin.Context) {
	var req qrRequest
	if !bind(c, &req) {
		return
	}
	if err := validation.Struct(c.Request.Context(), req); err != nil {
		h.fail(c, err)
		return
	}
	r, err := h.svc.Attendance.CheckInByQR(c.Request.Context(), role(c), req.Payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "registration": r})
}

func (h *Handler) bulkCheckIn(c *gin.Context) {
	var req bulkRequest
	if !bind(c, &req) {
		return
	}
	if err := validation.Struct(c.Request.Context(), req); err != nil {
		h.fail(c, err)
		return
	}
	res := h.svc.Attendance.BulkCheckIn(c.Request.Context(), role(c), req.RegistrationIDs)
	c.JSON(http.StatusOK, bulkResponse{
		BulkResult: res,
		Message:    fmt.Sprintf("Checked in %d of %d registrations", res.CheckedInCount, res.TotalProcessed),
	})
}

type bulkResponse struct {
	attendance.BulkResult
	Message string `json:"message"`
}

func (h *Handler) listAttendance(c *gin.Context) {
	f := attendance.RecordFilter{
		EventID:     c.Query("eventId"),
		CommitteeID: c.Query("committeeId"),
		Limit:       queryInt(c, "limit"),
	}
	if !scope(c, &f.CommitteeID) {
		h.fail(c, apperr.ErrForbidden)
		return
	}
	recs, err := h.svc.Attendance.ListRecords(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs, "count": len(recs)})
}

func (h *Handler) recordAttendance(c *gin.Context) {
	var req attendance.RecordInput
	if !bind(c, &req) {
		return
	}
	rec, err := h.svc.Attendance.RecordAttendance(c.Request.Context(), role(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) updateAttendance(c *gin.Context) {
	var req attendance.RecordPatch
	if !bind(c, &req) {
		return
	}
	rec, err := h.svc.Attendance.UpdateRecord(c.Request.Context(), role(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
