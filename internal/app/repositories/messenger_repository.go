package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/db"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/logger"
)

// MessengerRepository handles channel, membership and message storage
type MessengerRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMessengerRepository creates a new MessengerRepository
func NewMessengerRepository(db *pgxpool.Pool) *MessengerRepository {
	return &MessengerRepository{db: db, sb: statementBuilder()}
}

// CreateChannel inserts a channel together with its members in one transaction.
// The creator is always added as a member.
func (r *MessengerRepository) CreateChannel(ctx context.Context, ch *models.Channel, memberIDs []int64) error {
	return db.RunInTx(ctx, r.db, logger.Get(), func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("messenger_channels").
			Columns("name", "channel_type", "created_by").
			Values(ch.Name, ch.ChannelType, ch.CreatedBy).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create channel query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&ch.ID, &ch.CreatedAt); err != nil {
			return fmt.Errorf("error creating channel: %w", err)
		}
		return r.insertMembers(ctx, tx, ch.ID, append([]int64{ch.CreatedBy}, memberIDs...))
	})
}

func (r *MessengerRepository) insertMembers(ctx context.Context, tx pgx.Tx, channelID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	ins := r.sb.Insert("channel_members").Columns("channel_id", "user_id")
	for _, id := range userIDs {
		ins = ins.Values(channelID, id)
	}
	sql, args, err := ins.Suffix("ON CONFLICT (channel_id, user_id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add members query: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error adding channel members: %w", err)
	}
	return nil
}

// AddMembers adds users to a channel, ignoring existing members
func (r *MessengerRepository) AddMembers(ctx context.Context, channelID int64, userIDs []int64) error {
	return db.RunInTx(ctx, r.db, logger.Get(), func(ctx context.Context, tx pgx.Tx) error {
		return r.insertMembers(ctx, tx, channelID, userIDs)
	})
}

// GetChannel retrieves a channel without members
func (r *MessengerRepository) GetChannel(ctx context.Context, id int64) (*models.Channel, error) {
	sql, args, err := r.sb.Select("id", "name", "channel_type", "created_by", "created_at").
		From("messenger_channels").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get channel query: %w", err)
	}
	ch := &models.Channel{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&ch.ID, &ch.Name, &ch.ChannelType, &ch.CreatedBy, &ch.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("channel not found")
		}
		return nil, fmt.Errorf("error retrieving channel: %w", err)
	}
	return ch, nil
}

// ListChannelsForUser returns the user's channels with their unread counts
func (r *MessengerRepository) ListChannelsForUser(ctx context.Context, userID int64) ([]*models.Channel, error) {
	sql, args, err := r.sb.Select("ch.id", "ch.name", "ch.channel_type", "ch.created_by", "ch.created_at",
		"(SELECT COUNT(*) FROM messenger_messages m WHERE m.channel_id = ch.id AND m.sender_id <> cm.user_id AND NOT m.is_read)").
		From("messenger_channels ch").
		Join("channel_members cm ON cm.channel_id = ch.id").
		Where(squirrel.Eq{"cm.user_id": userID}).
		OrderBy("ch.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list channels query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing channels: %w", err)
	}
	defer rows.Close()

	channels := make([]*models.Channel, 0)
	for rows.Next() {
		ch := &models.Channel{}
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.ChannelType, &ch.CreatedBy, &ch.CreatedAt, &ch.UnreadCount); err != nil {
			return nil, fmt.Errorf("error scanning channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// IsMember reports whether the user belongs to the channel
func (r *MessengerRepository) IsMember(ctx context.Context, channelID, userID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("channel_members").
		Where(squirrel.Eq{"channel_id": channelID, "user_id": userID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build membership query: %w", err)
	}
	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking channel membership: %w", err)
	}
	return exists, nil
}

// ListMembers returns the users in a channel
func (r *MessengerRepository) ListMembers(ctx context.Context, channelID int64) ([]*models.User, error) {
	sql, args, err := r.sb.Select("u.id", "u.email", "u.first_name", "u.last_name", "u.role_type").
		From("channel_members cm").
		Join("users u ON u.id = cm.user_id").
		Where(squirrel.Eq{"cm.channel_id": channelID}).
		OrderBy("cm.joined_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list members query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing channel members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.User, 0)
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.RoleType); err != nil {
			return nil, fmt.Errorf("error scanning channel member: %w", err)
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

// CreateMessage stores a message
func (r *MessengerRepository) CreateMessage(ctx context.Context, m *models.Message) error {
	sql, args, err := r.sb.Insert("messenger_messages").
		Columns("channel_id", "sender_id", "content").
		Values(m.ChannelID, m.SenderID, m.Content).
		Suffix("RETURNING id, is_read, sent_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create message query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.IsRead, &m.SentAt); err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// ListMessages returns a page of a channel's messages, newest first, and the total count
func (r *MessengerRepository) ListMessages(ctx context.Context, channelID int64, offset uint64, limit int) ([]*models.Message, int64, error) {
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").
		From("messenger_messages").
		Where(squirrel.Eq{"channel_id": channelID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build message count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting messages: %w", err)
	}

	sql, args, err := r.sb.Select("m.id", "m.channel_id", "m.sender_id", "m.content", "m.is_read", "m.sent_at",
		"u.first_name", "u.last_name", "u.role_type").
		From("messenger_messages m").
		Join("users u ON u.id = m.sender_id").
		Where(squirrel.Eq{"m.channel_id": channelID}).
		OrderBy("m.sent_at DESC", "m.id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list messages query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		m := &models.Message{Sender: &models.User{}}
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.SenderID, &m.Content, &m.IsRead, &m.SentAt,
			&m.Sender.FirstName, &m.Sender.LastName, &m.Sender.RoleType); err != nil {
			return nil, 0, fmt.Errorf("error scanning message: %w", err)
		}
		m.Sender.ID = m.SenderID
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

// MarkRead flags every message in the channel not sent by the reader as read
func (r *MessengerRepository) MarkRead(ctx context.Context, channelID, readerID int64) (int64, error) {
	sql, args, err := r.sb.Update("messenger_messages").
		Set("is_read", true).
		Where(squirrel.Eq{"channel_id": channelID, "is_read": false}).
		Where(squirrel.NotEq{"sender_id": readerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark read query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}
