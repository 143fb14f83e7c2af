package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/cache"
)

const (
	faqCachePrefix     = "faq:"
	defaultFAQCacheTTL = 10 * time.Minute
)

// FAQService answers the chatbot walk and maintains its knowledge base
type FAQService interface {
	Chatbot(ctx context.Context, parentID *int64) (*dto.ChatbotResponse, error)
	CreateCategory(ctx context.Context, actor authz.Actor, req *dto.FAQCategoryRequest) (*models.FAQCategory, error)
	DeleteCategory(ctx context.Context, actor authz.Actor, id int64) error
	CreateItem(ctx context.Context, actor authz.Actor, req *dto.FAQItemRequest) (*models.FAQItem, error)
	DeleteItem(ctx context.Context, actor authz.Actor, id int64) error
}

type faqServiceImpl struct {
	store      FAQStore
	cache      cache.Cache
	ttl        time.Duration
	authorizer *authz.Authorizer
	logger     zerolog.Logger
}

// NewFAQService creates a new FAQService. Chatbot replies are cached for ttl.
func NewFAQService(store FAQStore, c cache.Cache, ttl time.Duration, authorizer *authz.Authorizer, logger zerolog.Logger) FAQService {
	if ttl <= 0 {
		ttl = defaultFAQCacheTTL
	}
	return &faqServiceImpl{store: store, cache: c, ttl: ttl, authorizer: authorizer, logger: logger}
}

func chatbotKey(parentID *int64) string {
	if parentID == nil {
		return faqCachePrefix + "chatbot:root"
	}
	return faqCachePrefix + "chatbot:" + strconv.FormatInt(*parentID, 10)
}

// Chatbot returns the subcategories of parentID, or its questions when it
// has none. A nil parentID starts at the top level.
func (s *faqServiceImpl) Chatbot(ctx context.Context, parentID *int64) (*dto.ChatbotResponse, error) {
	key := chatbotKey(parentID)
	if cached, ok := s.cached(ctx, key); ok {
		return cached, nil
	}

	resp, err := s.walk(ctx, parentID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache chatbot reply")
		}
	}
	return resp, nil
}

func (s *faqServiceImpl) cached(ctx context.Context, key string) (*dto.ChatbotResponse, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Chatbot cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	resp := &dto.ChatbotResponse{}
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, false
	}
	return resp, true
}

// walk answers one chatbot step. An unknown parent is an empty topic.
func (s *faqServiceImpl) walk(ctx context.Context, parentID *int64) (*dto.ChatbotResponse, error) {
	resp := &dto.ChatbotResponse{ParentID: parentID, Options: make([]dto.ChatbotOption, 0)}

	var parent *models.FAQCategory
	if parentID != nil {
		var err error
		parent, err = s.store.GetCategory(ctx, *parentID)
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return emptyReply(resp), nil
		}
		if err != nil {
			return nil, err
		}
	}

	subs, err := s.store.ListCategories(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if len(subs) > 0 {
		resp.Type = dto.ChatbotTypeCategory
		resp.Message = "What can I help you with? Please choose a topic."
		if parent != nil {
			resp.Message = "Please choose a topic under " + parent.Name + "."
		}
		for _, c := range subs {
			resp.Options = append(resp.Options, dto.ChatbotOption{ID: c.ID, Label: c.Name})
		}
		return resp, nil
	}

	if parent != nil {
		items, err := s.store.ListItems(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			resp.Type = dto.ChatbotTypeQuestion
			resp.Message = "Here are the common questions about " + parent.Name + "."
			for _, it := range items {
				resp.Options = append(resp.Options, dto.ChatbotOption{ID: it.ID, Label: it.Question, Answer: it.Answer})
			}
			return resp, nil
		}
	}

	return emptyReply(resp), nil
}

func emptyReply(resp *dto.ChatbotResponse) *dto.ChatbotResponse {
	resp.Type = dto.ChatbotTypeEmpty
	resp.Message = "No answers are registered for this topic yet."
	return resp
}

func (s *faqServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, faqCachePrefix); err != nil {
		s.logger.Error().Err(err).Msg("Failed to invalidate chatbot cache")
	}
}

// CreateCategory adds a category one level below its parent
func (s *faqServiceImpl) CreateCategory(ctx context.Context, actor authz.Actor, req *dto.FAQCategoryRequest) (*models.FAQCategory, error) {
	if err := s.authorizer.Require(actor, authz.ActionManageFAQ, authz.Resource{}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name is required")
	}

	c := &models.FAQCategory{Name: name, ParentID: req.ParentID, Depth: 1, SortOrder: req.SortOrder}
	if req.ParentID != nil {
		parent, err := s.store.GetCategory(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		c.Depth = parent.Depth + 1
	}

	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *faqServiceImpl) DeleteCategory(ctx context.Context, actor authz.Actor, id int64) error {
	if err := s.authorizer.Require(actor, authz.ActionManageFAQ, authz.Resource{}); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *faqServiceImpl) CreateItem(ctx context.Context, actor authz.Actor, req *dto.FAQItemRequest) (*models.FAQItem, error) {
	if err := s.authorizer.Require(actor, authz.ActionManageFAQ, authz.Resource{}); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	it := &models.FAQItem{
		CategoryID: req.CategoryID,
		Question:   strings.TrimSpace(req.Question),
		Answer:     strings.TrimSpace(req.Answer),
		SortOrder:  req.SortOrder,
	}
	if err := s.store.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return it, nil
}

func (s *faqServiceImpl) DeleteItem(ctx context.Context, actor authz.Actor, id int64) error {
	if err := s.authorizer.Require(actor, authz.ActionManageFAQ, authz.Resource{}); err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}
