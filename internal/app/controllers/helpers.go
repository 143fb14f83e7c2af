// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/middleware"
	"github.com/yigit/edulearn/internal/pkg/helpers"
)

// requireActor returns the authenticated caller or writes a 401.
func requireActor(ctx *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return authz.Actor{}, false
	}
	return actor, true
}

// pathID parses a numeric path parameter or writes a 400.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := helpers.ParseIDParam(ctx, name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body or writes a 400 with the field errors.
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return false
	}
	return true
}

// bindForm binds multipart or url-encoded fields.
func bindForm(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBind(req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return false
	}
	return true
}

// optionalFile returns the uploaded "file" part, or nil when none was sent.
func optionalFile(ctx *gin.Context) (*multipart.FileHeader, bool) {
	file, err := ctx.FormFile("file")
	if err == nil {
		return file, true
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	detail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid file upload")
	ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
	return nil, false
}

// queryInt reads an integer query value, falling back to def when absent.
func queryInt(ctx *gin.Context, name string, def int) (int, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid "+name+" parameter")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return v, true
}

func respondOK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func respondCreated(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func respondMessage(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusOK, dto.NewTextResponse(msg))
}
