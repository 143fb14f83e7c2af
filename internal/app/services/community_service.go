package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/app/repositories"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/helpers"
)

// CommunityService runs the community boards
type CommunityService interface {
	ListPosts(ctx context.Context, viewer authz.Actor, query dto.PostListQuery) (*dto.PostListResponse, error)
	GetPost(ctx context.Context, viewer authz.Actor, id int64) (*dto.PostResponse, error)
	CreatePost(ctx context.Context, actor authz.Actor, req *dto.PostRequest) (*dto.PostResponse, error)
	UpdatePost(ctx context.Context, actor authz.Actor, id int64, req *dto.PostRequest) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, actor authz.Actor, id int64) error
	ListComments(ctx context.Context, viewer authz.Actor, postID int64) ([]*dto.CommentNode, error)
	AddComment(ctx context.Context, actor authz.Actor, postID int64, req *dto.CommentRequest) ([]*dto.CommentNode, error)
	DeleteComment(ctx context.Context, actor authz.Actor, id int64) error
}

type communityServiceImpl struct {
	store      CommunityStore
	authorizer *authz.Authorizer
	logger     zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(store CommunityStore, authorizer *authz.Authorizer, logger zerolog.Logger) CommunityService {
	return &communityServiceImpl{store: store, authorizer: authorizer, logger: logger}
}

func (s *communityServiceImpl) ListPosts(ctx context.Context, viewer authz.Actor, query dto.PostListQuery) (*dto.PostListResponse, error) {
	if query.Board != "" && !query.Board.Valid() {
		return nil, apperrors.NewValidationError("unknown board")
	}

	offset, limit := helpers.CalculateOffsetLimit(query.Page, query.Size)
	filter := repositories.PostFilter{
		Board:      query.Board,
		Query:      strings.TrimSpace(query.Query),
		ViewerID:   viewer.UserID,
		AllVisible: viewer.IsManager(),
		Offset:     offset,
		Limit:      limit,
	}
	if query.Mine {
		id := viewer.UserID
		filter.AuthorID = &id
	}

	posts, total, err := s.store.ListPosts(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.PostListResponse{
		Posts:      make([]dto.PostResponse, 0, len(posts)),
		Pagination: helpers.NewPaginationInfo(total, query.Page, query.Size),
	}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, dto.NewPostResponse(p))
	}
	return resp, nil
}

// viewablePost loads a post the viewer is allowed to read. Closed posts of
// other users look missing.
func (s *communityServiceImpl) viewablePost(ctx context.Context, viewer authz.Actor, id int64) (*models.Post, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	res := authz.Resource{OwnerID: p.AuthorID, Public: p.IsOpen}
	if s.authorizer.Decide(viewer, authz.ActionView, res) != authz.Allow {
		return nil, apperrors.NewResourceNotFoundError("post not found")
	}
	return p, nil
}

func (s *communityServiceImpl) GetPost(ctx context.Context, viewer authz.Actor, id int64) (*dto.PostResponse, error) {
	p, err := s.viewablePost(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.IncrementPostViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("postID", id).Msg("Failed to increment post views")
	} else {
		p.Views++
	}
	resp := dto.NewPostResponse(p)
	return &resp, nil
}

func (s *communityServiceImpl) CreatePost(ctx context.Context, actor authz.Actor, req *dto.PostRequest) (*dto.PostResponse, error) {
	if !req.Board.Valid() {
		return nil, apperrors.NewValidationError("unknown board")
	}
	p := &models.Post{
		AuthorID: actor.UserID,
		Board:    req.Board,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		IsOpen:   req.IsOpen == nil || *req.IsOpen,
	}
	if err := s.store.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	return s.reloadPost(ctx, p.ID)
}

func (s *communityServiceImpl) reloadPost(ctx context.Context, id int64) (*dto.PostResponse, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewPostResponse(p)
	return &resp, nil
}

// UpdatePost is reserved to the post's author
func (s *communityServiceImpl) UpdatePost(ctx context.Context, actor authz.Actor, id int64, req *dto.PostRequest) (*dto.PostResponse, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Require(actor, authz.ActionAuthorEdit, authz.Resource{OwnerID: p.AuthorID}); err != nil {
		return nil, err
	}
	if !req.Board.Valid() {
		return nil, apperrors.NewValidationError("unknown board")
	}

	p.Board = req.Board
	p.Title = strings.TrimSpace(req.Title)
	p.Content = req.Content
	if req.IsOpen != nil {
		p.IsOpen = *req.IsOpen
	}
	if err := s.store.UpdatePost(ctx, p); err != nil {
		return nil, err
	}
	return s.reloadPost(ctx, id)
}

func (s *communityServiceImpl) DeletePost(ctx context.Context, actor authz.Actor, id int64) error {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizer.Require(actor, authz.ActionDelete, authz.Resource{OwnerID: p.AuthorID}); err != nil {
		return err
	}
	return s.store.DeletePost(ctx, id)
}

func (s *communityServiceImpl) ListComments(ctx context.Context, viewer authz.Actor, postID int64) ([]*dto.CommentNode, error) {
	if _, err := s.viewablePost(ctx, viewer, postID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(comments), nil
}

// AddComment posts a comment and returns the updated thread. A reply's
// parent must belong to the same post.
func (s *communityServiceImpl) AddComment(ctx context.Context, actor authz.Actor, postID int64, req *dto.CommentRequest) ([]*dto.CommentNode, error) {
	if _, err := s.viewablePost(ctx, actor, postID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.store.GetComment(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, apperrors.NewBadRequestError("parent comment belongs to another post")
		}
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required")
	}

	c := &models.Comment{PostID: postID, ParentID: req.ParentID, AuthorID: actor.UserID, Content: content}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return s.ListComments(ctx, actor, postID)
}

// DeleteComment hides the comment's content and keeps its replies
func (s *communityServiceImpl) DeleteComment(ctx context.Context, actor authz.Actor, id int64) error {
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDeleted {
		return apperrors.NewResourceNotFoundError("comment not found")
	}
	if err := s.authorizer.Require(actor, authz.ActionDelete, authz.Resource{OwnerID: c.AuthorID}); err != nil {
		return err
	}
	return s.store.SoftDeleteComment(ctx, id)
}

// BuildCommentTree nests comments under their parents, keeping input order
// among siblings. Replies whose parent is missing are shown at the top level.
func BuildCommentTree(comments []*models.Comment) []*dto.CommentNode {
	nodes := make(map[int64]*dto.CommentNode, len(comments))
	for _, c := range comments {
		node := &dto.CommentNode{
			ID:        c.ID,
			ParentID:  c.ParentID,
			Content:   c.Content,
			IsDeleted: c.IsDeleted,
			CreatedAt: c.CreatedAt,
			Replies:   make([]*dto.CommentNode, 0),
		}
		if c.IsDeleted {
			node.Content = ""
		} else {
			node.Author = dto.NewUserSummary(c.Author)
		}
		nodes[c.ID] = node
	}

	roots := make([]*dto.CommentNode, 0)
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
