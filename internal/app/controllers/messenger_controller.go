package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/app/services"
	"github.com/yigit/edulearn/internal/middleware"
	"github.com/yigit/edulearn/internal/pkg/helpers"
	"github.com/yigit/edulearn/internal/pkg/websocket"
)

// MessengerController handles channels, messages and the live socket
type MessengerController struct {
	messengerService services.MessengerService
	wsHandler        *websocket.Handler
}

// NewMessengerController creates a new MessengerController
func NewMessengerController(messengerService services.MessengerService, wsHandler *websocket.Handler) *MessengerController {
	return &MessengerController{
		messengerService: messengerService,
		wsHandler:        wsHandler,
	}
}

// CreateChannel opens a channel
// @Summary Create channel
// @Description The creator is always a member
// @Tags messenger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChannelRequest true "Channel"
// @Success 201 {object} dto.APIResponse{data=models.Channel} "Channel created"
// @Router /channels [post]
func (c *MessengerController) CreateChannel(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.ChannelRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.messengerService.CreateChannel(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// ListChannels lists the caller's channels
// @Summary My channels
// @Tags messenger
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Channel} "Channels"
// @Router /channels [get]
func (c *MessengerController) ListChannels(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	resp, err := c.messengerService.ListChannels(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// AddMembers invites users to a channel
// @Summary Add channel members
// @Tags messenger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Param request body dto.AddMembersRequest true "User IDs"
// @Success 200 {object} dto.APIResponse{data=models.Channel} "Channel"
// @Failure 403 {object} dto.ErrorResponse "Only the creator or a manager can add members"
// @Router /channels/{id}/members [post]
func (c *MessengerController) AddMembers(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AddMembersRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.messengerService.AddMembers(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// ListMessages pages through channel history
// @Summary Channel messages
// @Description Newest first
// @Tags messenger
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.MessageListResponse} "Messages"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /channels/{id}/messages [get]
func (c *MessengerController) ListMessages(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	resp, err := c.messengerService.ListMessages(ctx.Request.Context(), actor, id, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// SendMessage posts a message and pushes it to connected members
// @Summary Send message
// @Tags messenger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Param request body dto.MessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse} "Message sent"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /channels/{id}/messages [post]
func (c *MessengerController) SendMessage(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.MessageRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.messengerService.SendMessage(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// MarkRead marks other members' messages as read
// @Summary Mark channel read
// @Tags messenger
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Success 200 {object} dto.APIResponse{data=map[string]int64} "Number of messages marked"
// @Router /channels/{id}/read [put]
func (c *MessengerController) MarkRead(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	n, err := c.messengerService.MarkRead(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"marked": n})
}

// Connect upgrades to a websocket bound to one channel
// @Summary Channel websocket
// @Description Pass the access token as the token query parameter. Text frames are stored and broadcast to the channel.
// @Tags messenger
// @Param id path int true "Channel ID"
// @Param token query string true "Access token"
// @Success 101 {string} string "Switching protocols"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /channels/{id}/ws [get]
func (c *MessengerController) Connect(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.messengerService.RequireMember(ctx.Request.Context(), id, actor.UserID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.wsHandler.Serve(ctx, id, actor.UserID)
}
