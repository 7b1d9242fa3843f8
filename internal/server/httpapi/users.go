package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/aviato/internal/server/models"
	"github.com/gin-gonic/gin"
)

const userNotFound = "User not found"

// listUsers returns all users, or the single match of ?email= as a
// one-element list.
func (h *Handler) listUsers(c *gin.Context) {
	if email := c.Query("email"); email != "" {
		user, err := h.users.GetByEmail(c.Request.Context(), email)
		if err != nil {
			h.writeError(c, err, userNotFound)
			return
		}
		c.JSON(http.StatusOK, []*models.User{user})
		return
	}

	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err, userNotFound)
		return
	}
	if list == nil {
		list = []*models.User{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) me(c *gin.Context) {
	h.respondUser(c, currentUserID(c))
}

func (h *Handler) getUser(c *gin.Context) {
	h.respondUser(c, c.Param("id"))
}

func (h *Handler) respondUser(c *gin.Context, id string) {
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	var update models.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), currentUserID(c), c.Param("id"), update)
	if err != nil {
		h.writeError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, user)
}
