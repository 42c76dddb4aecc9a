package handlers

import (
	"net/http"

	"postboard/internal/apperr"
	"postboard/internal/models"
	"postboard/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts   *services.PostService
	ranking *services.RankingService
}

func NewPostHandler(posts *services.PostService, ranking *services.RankingService) *PostHandler {
	return &PostHandler{posts: posts, ranking: ranking}
}

// Create 发布帖子
func (h *PostHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var in services.PostInput
	if !bindJSON(c, &in) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), user.Username, in)
	if err != nil {
		apperr.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully", "post": post})
}

// Update 修改帖子，仅作者
func (h *PostHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}
	var patch services.PostPatch
	if !bindJSON(c, &patch) {
		return
	}

	post, err := h.posts.Update(c.Request.Context(), id, user.Username, patch)
	if err != nil {
		apperr.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully", "post": post})
}

// Delete 删除帖子，仅作者
func (h *PostHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id, user.Username); err != nil {
		apperr.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		apperr.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) ListAll(c *gin.Context) {
	posts, err := h.posts.ListAll(c.Request.Context())
	if err != nil {
		apperr.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) ListByUser(c *gin.Context) {
	posts, err := h.posts.ListByUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		apperr.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) ListByTopic(c *gin.Context) {
	posts, err := h.ranking.ListByTopic(c.Request.Context(), c.Param("topic"))
	if err != nil {
		apperr.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// MostPopular 返回话题下指定状态的最热帖子。
// 路由中话题与帖子 ID 共用 :id 通配符。
func (h *PostHandler) MostPopular(status models.PostStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := h.ranking.MostPopular(c.Request.Context(), c.Param("id"), status)
		if err != nil {
			apperr.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}
