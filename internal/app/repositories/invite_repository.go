package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/db"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/dberrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var inviteColumns = []string{
	"id", "inviter_id", "invitee_contact", "channel", "status", "squad_id", "event_id", "message", "sent_at", "delivered_at",
}

// InviteRepository handles invite database operations
type InviteRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(database *db.PostgresDB) *InviteRepository {
	return &InviteRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanInvite(row pgx.Row) (*models.Invite, error) {
	var inv models.Invite
	err := row.Scan(&inv.ID, &inv.InviterID, &inv.InviteeContact, &inv.Channel, &inv.Status,
		&inv.SquadID, &inv.EventID, &inv.Message, &inv.SentAt, &inv.DeliveredAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateMany inserts invites in one statement and fills in their generated fields
func (r *InviteRepository) CreateMany(ctx context.Context, invites []*models.Invite) error {
	if len(invites) == 0 {
		return nil
	}

	q := r.sb.Insert("invites").
		Columns("inviter_id", "invitee_contact", "channel", "status", "squad_id", "event_id", "message")
	for _, inv := range invites {
		q = q.Values(inv.InviterID, inv.InviteeContact, inv.Channel, inv.Status, inv.SquadID, inv.EventID, inv.Message)
	}

	sql, args, err := q.Suffix("RETURNING id, sent_at").ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error creating invites: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(invites) {
			return fmt.Errorf("error creating invites: unexpected extra row")
		}
		if err := rows.Scan(&invites[i].ID, &invites[i].SentAt); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewValidationError("", "Referenced squad or event does not exist")
		}
		return fmt.Errorf("error creating invites: %w", err)
	}
	return nil
}

// GetByID retrieves an invite by ID
func (r *InviteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error) {
	sql, args, err := r.sb.Select(inviteColumns...).From("invites").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	inv, err := scanInvite(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInviteNotFound
		}
		return nil, fmt.Errorf("error getting invite: %w", err)
	}
	return inv, nil
}

// ListByInviter returns one page of invites sent by a user, newest first
func (r *InviteRepository) ListByInviter(ctx context.Context, inviterID uuid.UUID, page, size int) ([]*models.Invite, int64, error) {
	where := squirrel.Eq{"inviter_id": inviterID}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("invites").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting invites: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	sql, args, err := r.sb.Select(inviteColumns...).
		From("invites").
		Where(where).
		OrderBy("sent_at DESC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	invites := make([]*models.Invite, 0)
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		invites = append(invites, inv)
	}
	return invites, total, rows.Err()
}
