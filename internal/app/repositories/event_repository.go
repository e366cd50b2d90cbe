package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/db"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/dberrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var eventColumns = []string{
	"e.id", "e.squad_id", "e.center_id", "e.datetime", "e.meeting_point", "e.note", "e.created_at",
	"s.name", "c.name",
}

// EventRepository handles event and RSVP database operations
type EventRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(database *db.PostgresDB) *EventRepository {
	return &EventRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.SquadID, &e.CenterID, &e.Datetime, &e.MeetingPoint, &e.Note, &e.CreatedAt, &e.SquadName, &e.CenterName)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) selectEvents() squirrel.SelectBuilder {
	return r.sb.Select(eventColumns...).
		From("events e").
		Join("squads s ON s.id = e.squad_id").
		Join("centers c ON c.id = e.center_id")
}

func mapEventWriteError(err error) error {
	if dberrors.IsForeignKeyViolation(err) {
		return apperrors.NewValidationError("center_id", "Referenced squad or center does not exist")
	}
	return err
}

// Create inserts an event
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	sql, args, err := r.sb.Insert("events").
		Columns("squad_id", "center_id", "datetime", "meeting_point", "note").
		Values(e.SquadID, e.CenterID, e.Datetime, e.MeetingPoint, e.Note).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&e.ID, &e.CreatedAt); err != nil {
		if mapped := mapEventWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

// GetByID retrieves an event with its squad and center names
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	sql, args, err := r.selectEvents().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	e, err := scanEvent(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	return e, nil
}

// ListForMember lists events of squads the user belongs to, ordered by datetime
func (r *EventRepository) ListForMember(ctx context.Context, userID uuid.UUID, filter dto.EventFilter) ([]*models.Event, int64, error) {
	where := squirrel.And{
		squirrel.Expr("EXISTS (SELECT 1 FROM squad_members vm WHERE vm.squad_id = e.squad_id AND vm.user_id = ?)", userID),
	}
	if filter.SquadID != nil {
		where = append(where, squirrel.Eq{"e.squad_id": *filter.SquadID})
	}
	if filter.From != nil {
		where = append(where, squirrel.GtOrEq{"e.datetime": *filter.From})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("events e").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting events: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	sql, args, err := r.selectEvents().Where(where).OrderBy("e.datetime").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

// Update writes every mutable column of e
func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	sql, args, err := r.sb.Update("events").
		Set("center_id", e.CenterID).
		Set("datetime", e.Datetime).
		Set("meeting_point", e.MeetingPoint).
		Set("note", e.Note).
		Where(squirrel.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapEventWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error updating event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// Delete removes an event with its RSVPs and invites
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("events").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// UpsertRSVP creates the user's RSVP or updates it in place. A nil status
// creates the row as maybe and leaves an existing status untouched.
func (r *EventRepository) UpsertRSVP(ctx context.Context, eventID, userID uuid.UUID, status *models.RSVPStatus) (*models.RSVP, error) {
	var statusArg interface{}
	if status != nil {
		statusArg = string(*status)
	}

	sql, args, err := r.sb.Insert("event_rsvps").
		Columns("event_id", "user_id", "status").
		Values(eventID, userID, squirrel.Expr("COALESCE(?::text, 'maybe')", statusArg)).
		Suffix("ON CONFLICT (event_id, user_id) DO UPDATE SET status = COALESCE(?::text, event_rsvps.status), responded_at = NOW() RETURNING id, event_id, user_id, status, responded_at", statusArg).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var rsvp models.RSVP
	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.Status, &rsvp.RespondedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error saving RSVP: %w", err)
	}
	return &rsvp, nil
}

// ListRSVPs lists the RSVPs of an event
func (r *EventRepository) ListRSVPs(ctx context.Context, eventID uuid.UUID) ([]*models.RSVP, error) {
	return r.queryRSVPs(ctx, squirrel.Eq{"event_id": eventID})
}

// ListUserRSVPs lists every RSVP the user has given
func (r *EventRepository) ListUserRSVPs(ctx context.Context, userID uuid.UUID) ([]*models.RSVP, error) {
	return r.queryRSVPs(ctx, squirrel.Eq{"user_id": userID})
}

func (r *EventRepository) queryRSVPs(ctx context.Context, where squirrel.Sqlizer) ([]*models.RSVP, error) {
	sql, args, err := r.sb.Select("id", "event_id", "user_id", "status", "responded_at").
		From("event_rsvps").
		Where(where).
		OrderBy("responded_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	rsvps := make([]*models.RSVP, 0)
	for rows.Next() {
		var rsvp models.RSVP
		if err := rows.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.Status, &rsvp.RespondedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		rsvps = append(rsvps, &rsvp)
	}
	return rsvps, rows.Err()
}
