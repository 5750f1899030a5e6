package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"conference/internal/apperr"
	"conference/internal/registration"
	"conference/internal/store"
)

func (h *Handler) createRegistration(c *gin.Context) {
	var req registration.CreateInput
	if !bind(c, &req) {
		return
	}
	r, err := h.svc.Registrations.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": r.Code, "registrationId": r.ID})
}

func (h *Handler) getRegistration(c *gin.Context) {
	d, err := h.svc.Registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	who := role(c)
	owner := strings.EqualFold(d.Email, who.Email)
	if !owner && !who.Covers(d.CommitteeID) {
		h.fail(c, apperr.ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) listRegistrations(c *gin.Context) {
	f := store.RegistrationFilter{
		EventID:     c.Query("eventId"),
		CommitteeID: c.Query("committeeId"),
		Email:       c.Query("email"),
		Limit:       queryInt(c, "limit"),
	}
	if !scope(c, &f.CommitteeID) {
		h.fail(c, apperr.ErrForbidden)
		return
	}
	list, err := h.svc.Registrations.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrations": list, "count": len(list)})
}

func (h *Handler) updateRegistration(c *gin.Context) {
	var req registration.Patch
	if !bind(c, &req) {
		return
	}
	r, err := h.svc.Registrations.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) deleteRegistration(c *gin.Context) {
	if err := h.svc.Registrations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// scope narrows a committee filter to the caller's chair scope. It reports
// false when the caller asked for a committee outside that scope.
func scope(c *gin.Context, committee *string) bool {
	narrowed := role(c).ScopeFilter()
	if narrowed == "" {
		return true
	}
	if *committee != "" && *committee != narrowed {
		return false
	}
	*committee = narrowed
	return true
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

