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
	"github.com/yigit/edulearn/internal/pkg/websocket"
)

const maxMessageLength = 4000

// Broadcaster publishes a stored message to a channel's live connections
type Broadcaster interface {
	Broadcast(message *websocket.Message)
}

// MessengerService handles private channels and their messages. It also
// backs the websocket connections of each channel.
type MessengerService interface {
	websocket.Poster
	CreateChannel(ctx context.Context, actor authz.Actor, req *dto.ChannelRequest) (*models.Channel, error)
	ListChannels(ctx context.Context, actor authz.Actor) ([]*models.Channel, error)
	AddMembers(ctx context.Context, actor authz.Actor, channelID int64, req *dto.AddMembersRequest) (*models.Channel, error)
	ListMessages(ctx context.Context, actor authz.Actor, channelID int64, page, size int) (*dto.MessageListResponse, error)
	SendMessage(ctx context.Context, actor authz.Actor, channelID int64, req *dto.MessageRequest) (*dto.MessageResponse, error)
	MarkRead(ctx context.Context, actor authz.Actor, channelID int64) (int64, error)
	RequireMember(ctx context.Context, channelID, userID int64) error
}

type messengerServiceImpl struct {
	store       MessengerStore
	users       UserStore
	broadcaster Broadcaster
	authorizer  *authz.Authorizer
	logger      zerolog.Logger
}

// NewMessengerService creates a new MessengerService
func NewMessengerService(store MessengerStore, users UserStore, broadcaster Broadcaster, authorizer *authz.Authorizer, logger zerolog.Logger) MessengerService {
	return &messengerServiceImpl{
		store:       store,
		users:       users,
		broadcaster: broadcaster,
		authorizer:  authorizer,
		logger:      logger,
	}
}

// uniqueIDs drops duplicates, non-positive ids and skip.
func uniqueIDs(ids []int64, skip int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || id == skip || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// CreateChannel opens a channel with the actor and the listed users as members
func (s *messengerServiceImpl) CreateChannel(ctx context.Context, actor authz.Actor, req *dto.ChannelRequest) (*models.Channel, error) {
	if !req.ChannelType.Valid() {
		return nil, apperrors.NewValidationError("unknown channel type")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("channel name is required")
	}

	ch := &models.Channel{Name: name, ChannelType: req.ChannelType, CreatedBy: actor.UserID}
	if err := s.store.CreateChannel(ctx, ch, uniqueIDs(req.MemberIDs, actor.UserID)); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("channelID", ch.ID).Int64("creatorID", actor.UserID).Msg("Channel created")
	return s.withMembers(ctx, ch.ID)
}

func (s *messengerServiceImpl) withMembers(ctx context.Context, channelID int64) (*models.Channel, error) {
	ch, err := s.store.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch.Members, err = s.store.ListMembers(ctx, channelID); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *messengerServiceImpl) ListChannels(ctx context.Context, actor authz.Actor) ([]*models.Channel, error) {
	return s.store.ListChannelsForUser(ctx, actor.UserID)
}

// AddMembers invites users; only the channel's creator or a manager may
func (s *messengerServiceImpl) AddMembers(ctx context.Context, actor authz.Actor, channelID int64, req *dto.AddMembersRequest) (*models.Channel, error) {
	ch, err := s.store.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Require(actor, authz.ActionManageChannel, authz.Resource{OwnerID: ch.CreatedBy}); err != nil {
		return nil, err
	}

	ids := uniqueIDs(req.UserIDs, 0)
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("at least one user id is required")
	}
	if err := s.store.AddMembers(ctx, channelID, ids); err != nil {
		return nil, err
	}
	return s.withMembers(ctx, channelID)
}

// RequireMember fails with a permission error for non-members
func (s *messengerServiceImpl) RequireMember(ctx context.Context, channelID, userID int64) error {
	if _, err := s.store.GetChannel(ctx, channelID); err != nil {
		return err
	}
	ok, err := s.store.IsMember(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbiddenError("you are not a member of this channel")
	}
	return nil
}

func (s *messengerServiceImpl) ListMessages(ctx context.Context, actor authz.Actor, channelID int64, page, size int) (*dto.MessageListResponse, error) {
	if err := s.RequireMember(ctx, channelID, actor.UserID); err != nil {
		return nil, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	list, total, err := s.store.ListMessages(ctx, channelID, offset, limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.MessageListResponse{
		Messages:   make([]dto.MessageResponse, 0, len(list)),
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
	for _, m := range list {
		resp.Messages = append(resp.Messages, dto.NewMessageResponse(m))
	}
	return resp, nil
}

// PostMessage stores a message from a member and broadcasts it to the channel
func (s *messengerServiceImpl) PostMessage(ctx context.Context, channelID, senderID int64, content string) (*websocket.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("message content is required")
	}
	if len([]rune(content)) > maxMessageLength {
		return nil, apperrors.NewValidationError("message is too long")
	}
	if err := s.RequireMember(ctx, channelID, senderID); err != nil {
		return nil, err
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	m := &models.Message{ChannelID: channelID, SenderID: senderID, Content: content}
	if err := s.store.CreateMessage(ctx, m); err != nil {
		return nil, err
	}

	out := &websocket.Message{
		ID:         m.ID,
		ChannelID:  m.ChannelID,
		SenderID:   m.SenderID,
		SenderName: sender.FullName(),
		Content:    m.Content,
		SentAt:     m.SentAt,
	}
	s.broadcaster.Broadcast(out)
	return out, nil
}

func (s *messengerServiceImpl) SendMessage(ctx context.Context, actor authz.Actor, channelID int64, req *dto.MessageRequest) (*dto.MessageResponse, error) {
	m, err := s.PostMessage(ctx, channelID, actor.UserID, req.Content)
	if err != nil {
		return nil, err
	}
	return &dto.MessageResponse{
		ID:         m.ID,
		ChannelID:  m.ChannelID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
		SentAt:     m.SentAt,
	}, nil
}

// MarkRead marks the other members' messages as read and returns how many changed
func (s *messengerServiceImpl) MarkRead(ctx context.Context, actor authz.Actor, channelID int64) (int64, error) {
	if err := s.RequireMember(ctx, channelID, actor.UserID); err != nil {
		return 0, err
	}
	return s.store.MarkRead(ctx, channelID, actor.UserID)
}
