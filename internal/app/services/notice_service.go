package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/helpers"
)

// NoticeService manages site-wide announcements
type NoticeService interface {
	ListNotices(ctx context.Context, viewer authz.Actor, page, size int) (*dto.NoticeListResponse, error)
	GetNotice(ctx context.Context, viewer authz.Actor, id int64) (*models.Notice, error)
	CreateNotice(ctx context.Context, actor authz.Actor, req *dto.NoticeRequest) (*models.Notice, error)
	UpdateNotice(ctx context.Context, actor authz.Actor, id int64, req *dto.NoticeRequest) (*models.Notice, error)
	DeleteNotice(ctx context.Context, actor authz.Actor, id int64) error
}

type noticeServiceImpl struct {
	notices    NoticeStore
	authorizer *authz.Authorizer
	logger     zerolog.Logger
}

// NewNoticeService creates a new NoticeService
func NewNoticeService(notices NoticeStore, authorizer *authz.Authorizer, logger zerolog.Logger) NoticeService {
	return &noticeServiceImpl{notices: notices, authorizer: authorizer, logger: logger}
}

func visibleTo(n *models.Notice, role models.RoleType) bool {
	targets := models.TargetsFor(role)
	if targets == nil {
		return true
	}
	for _, t := range targets {
		if n.Target == t {
			return true
		}
	}
	return false
}

// ListNotices returns the notices addressed to the viewer's role, pinned first
func (s *noticeServiceImpl) ListNotices(ctx context.Context, viewer authz.Actor, page, size int) (*dto.NoticeListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	list, total, err := s.notices.List(ctx, models.TargetsFor(viewer.Role), offset, limit)
	if err != nil {
		return nil, err
	}
	return &dto.NoticeListResponse{
		Notices:    list,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// GetNotice returns a notice and counts the view
func (s *noticeServiceImpl) GetNotice(ctx context.Context, viewer authz.Actor, id int64) (*models.Notice, error) {
	n, err := s.notices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(n, viewer.Role) {
		return nil, apperrors.NewResourceNotFoundError("notice not found")
	}

	if err := s.notices.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("noticeID", id).Msg("Failed to increment notice views")
	} else {
		n.Views++
	}
	return n, nil
}

func (s *noticeServiceImpl) CreateNotice(ctx context.Context, actor authz.Actor, req *dto.NoticeRequest) (*models.Notice, error) {
	if err := s.authorizer.Require(actor, authz.ActionPublishNotice, authz.Resource{}); err != nil {
		return nil, err
	}
	if !req.NoticeType.Valid() || !req.Target.Valid() {
		return nil, apperrors.NewValidationError("unknown notice type or target")
	}

	n := &models.Notice{
		AuthorID:   actor.UserID,
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		NoticeType: req.NoticeType,
		Target:     req.Target,
		IsPinned:   req.IsPinned,
	}
	if err := s.notices.Create(ctx, n); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("noticeID", n.ID).Int64("authorID", actor.UserID).Msg("Notice published")
	return n, nil
}

// UpdateNotice is reserved to the notice's author
func (s *noticeServiceImpl) UpdateNotice(ctx context.Context, actor authz.Actor, id int64, req *dto.NoticeRequest) (*models.Notice, error) {
	n, err := s.notices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Require(actor, authz.ActionAuthorEdit, authz.Resource{OwnerID: n.AuthorID}); err != nil {
		return nil, err
	}
	if !req.NoticeType.Valid() || !req.Target.Valid() {
		return nil, apperrors.NewValidationError("unknown notice type or target")
	}

	n.Title = strings.TrimSpace(req.Title)
	n.Content = req.Content
	n.NoticeType = req.NoticeType
	n.Target = req.Target
	n.IsPinned = req.IsPinned
	if err := s.notices.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *noticeServiceImpl) DeleteNotice(ctx context.Context, actor authz.Actor, id int64) error {
	n, err := s.notices.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizer.Require(actor, authz.ActionDelete, authz.Resource{OwnerID: n.AuthorID}); err != nil {
		return err
	}
	return s.notices.Delete(ctx, id)
}
