package handlers

import (
	"net/http"
	"strings"

	"postboard/internal/apperr"
	"postboard/internal/models"
	"postboard/internal/services"

	"github.com/gin-gonic/gin"
)

type InteractionHandler struct {
	interactions *services.InteractionService
}

func NewInteractionHandler(interactions *services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

// commentRequest 兼容 comment 与 text 两种字段名
type commentRequest struct {
	Comment string `json:"comment"`
	Text    string `json:"text"`
}

// React 点赞或点踩
func (h *InteractionHandler) React(kind models.InteractionType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := postID(c)
		if !ok {
			return
		}

		post, err := h.interactions.React(c.Request.Context(), id, user.Username, kind)
		if err != nil {
			apperr.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Post " + strings.ToLower(string(kind)) + "d successfully",
			"post":    post,
		})
	}
}

// Comment 发表评论
func (h *InteractionHandler) Comment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	text := req.Comment
	if text == "" {
		text = req.Text
	}

	post, err := h.interactions.Comment(c.Request.Context(), id, user.Username, text)
	if err != nil {
		apperr.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added successfully", "post": post})
}

func (h *InteractionHandler) ListComments(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	comments, err := h.interactions.ListComments(c.Request.Context(), id)
	if err != nil {
		apperr.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}
