package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/app/services"
	"github.com/yigit/edulearn/internal/middleware"
	"github.com/yigit/edulearn/internal/pkg/helpers"
)

// FAQController serves the FAQ chatbot and its manager CRUD
type FAQController struct {
	faqService services.FAQService
}

// NewFAQController creates a new FAQController
func NewFAQController(faqService services.FAQService) *FAQController {
	return &FAQController{faqService: faqService}
}

// Chatbot walks one level of the FAQ tree
// @Summary FAQ chatbot
// @Description Returns subcategories, else the category's questions, else an empty reply
// @Tags faq
// @Produce json
// @Param parentId query int false "Category to open; omit or null for the top level"
// @Success 200 {object} dto.APIResponse{data=dto.ChatbotResponse} "Chatbot reply"
// @Router /faq/chatbot [get]
func (c *FAQController) Chatbot(ctx *gin.Context) {
	parentID, err := helpers.ParseOptionalInt64Query(ctx, "parentId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	resp, err := c.faqService.Chatbot(ctx.Request.Context(), parentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// CreateCategory adds a category
// @Summary Create FAQ category
// @Tags faq
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FAQCategoryRequest true "Category"
// @Success 201 {object} dto.APIResponse{data=models.FAQCategory} "Category created"
// @Failure 403 {object} dto.ErrorResponse "Managers only"
// @Router /faq/categories [post]
func (c *FAQController) CreateCategory(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.FAQCategoryRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.faqService.CreateCategory(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// DeleteCategory removes a category
// @Summary Delete FAQ category
// @Tags faq
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} dto.APIResponse "Category deleted"
// @Router /faq/categories/{id} [delete]
func (c *FAQController) DeleteCategory(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.faqService.DeleteCategory(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Category deleted")
}

// CreateItem adds a question under a category
// @Summary Create FAQ item
// @Tags faq
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FAQItemRequest true "Question and answer"
// @Success 201 {object} dto.APIResponse{data=models.FAQItem} "Item created"
// @Router /faq/items [post]
func (c *FAQController) CreateItem(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	var req dto.FAQItemRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.faqService.CreateItem(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// DeleteItem removes a question
// @Summary Delete FAQ item
// @Tags faq
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} dto.APIResponse "Item deleted"
// @Router /faq/items/{id} [delete]
func (c *FAQController) DeleteItem(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.faqService.DeleteItem(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Item deleted")
}
