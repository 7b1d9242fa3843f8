package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const conversationNotFound = "Conversation not found"

type startRequest struct {
	UserID string `json:"userId"`
}

type sendRequest struct {
	Text string `json:"text"`
}

type rateRequest struct {
	IsGood bool   `json:"isGood"`
	Reason string `json:"reason"`
}

func (h *Handler) listConversations(c *gin.Context) {
	list, err := h.convs.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err, conversationNotFound)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) startConversation(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "userId required"})
		return
	}

	res, err := h.convs.Start(c.Request.Context(), currentUserID(c), req.UserID, timezoneOffset(c))
	if err != nil {
		h.writeError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	res, err := h.convs.Send(c.Request.Context(), currentUserID(c), c.Param("userId"), req.Text, timezoneOffset(c))
	if err != nil {
		h.writeError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, res.Message)
}

func (h *Handler) rateConversation(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	res, err := h.convs.Rate(c.Request.Context(), currentUserID(c), c.Param("userId"), req.IsGood, req.Reason)
	if err != nil {
		h.writeError(c, err, conversationNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"ratingType":     res.RatingType,
		"approvalChange": res.ApprovalChange,
	})
}
