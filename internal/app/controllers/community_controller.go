package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/app/services"
	"github.com/yigit/edulearn/internal/middleware"
)

// CommunityController handles the community board
type CommunityController struct {
	communityService services.CommunityService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService) *CommunityController {
	return &CommunityController{communityService: communityService}
}

// ListPosts lists board posts
// @Summary List community posts
// @Description Filters by board, free-text query (title, content or author name) and the caller's own posts
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param board query string false "Board" Enums(FREE, QNA, DISCUSSION)
// @Param q query string false "Search text"
// @Param mine query bool false "Only my posts"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size, defaults to 10"
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse} "Posts"
// @Router /community/posts [get]
func (c *CommunityController) ListPosts(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var query dto.PostListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}
	resp, err := c.communityService.ListPosts(ctx.Request.Context(), actor, query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// GetPost returns a post and counts the view
// @Summary Get community post
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Post"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /community/posts/{id} [get]
func (c *CommunityController) GetPost(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.communityService.GetPost(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// CreatePost writes a new post
// @Summary Create community post
// @Tags community
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PostRequest true "Post"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse} "Post created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /community/posts [post]
func (c *CommunityController) CreatePost(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.PostRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.communityService.CreatePost(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// UpdatePost edits the caller's post
// @Summary Update community post
// @Tags community
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.PostRequest true "Post"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Post updated"
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Router /community/posts/{id} [put]
func (c *CommunityController) UpdatePost(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.PostRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.communityService.UpdatePost(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// DeletePost removes a post
// @Summary Delete community post
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse "Post deleted"
// @Router /community/posts/{id} [delete]
func (c *CommunityController) DeletePost(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.communityService.DeletePost(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Post deleted")
}

// ListComments returns a post's comment tree
// @Summary List comments
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentNode} "Comment tree"
// @Router /community/posts/{id}/comments [get]
func (c *CommunityController) ListComments(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.communityService.ListComments(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// AddComment comments on a post or replies to a comment
// @Summary Add comment
// @Tags community
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.CommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=[]dto.CommentNode} "Updated comment tree"
// @Failure 400 {object} dto.ErrorResponse "Parent comment belongs to another post"
// @Router /community/posts/{id}/comments [post]
func (c *CommunityController) AddComment(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.communityService.AddComment(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// DeleteComment hides a comment's content, keeping its replies
// @Summary Delete comment
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} dto.APIResponse "Comment deleted"
// @Router /comments/{id} [delete]
func (c *CommunityController) DeleteComment(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.communityService.DeleteComment(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Comment deleted")
}
