package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/db"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	memberCountExpr     = "(SELECT COUNT(*) FROM squad_members sm WHERE sm.squad_id = s.id)"
	registeredCountExpr = "(SELECT COUNT(*) FROM squad_members sm WHERE sm.squad_id = s.id AND sm.has_registered)"
)

var squadStatsColumns = []string{
	"s.id", "s.name", "s.description", "s.max_members", "s.county", "s.is_public",
	"s.voter_registration_date", "s.registration_center_id", "s.owner_id", "s.created_at", "s.updated_at",
	"COALESCE(c.name, '')",
	memberCountExpr + " AS member_count",
	registeredCountExpr + " AS registered_count",
}

// SquadRepository handles squad database operations
type SquadRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewSquadRepository creates a new SquadRepository
func NewSquadRepository(database *db.PostgresDB) *SquadRepository {
	return &SquadRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanSquadWithStats(row pgx.Row) (*models.SquadWithStats, error) {
	var s models.SquadWithStats
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.MaxMembers, &s.County, &s.IsPublic,
		&s.VoterRegistrationDate, &s.RegistrationCenterID, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt,
		&s.CenterName, &s.Members, &s.Registered,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SquadRepository) selectStats() squirrel.SelectBuilder {
	return r.sb.Select(squadStatsColumns...).
		From("squads s").
		LeftJoin("centers c ON c.id = s.registration_center_id")
}

func (r *SquadRepository) querySquads(ctx context.Context, q squirrel.SelectBuilder) ([]*models.SquadWithStats, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	squads := make([]*models.SquadWithStats, 0)
	for rows.Next() {
		s, err := scanSquadWithStats(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		squads = append(squads, s)
	}
	return squads, rows.Err()
}

func (r *SquadRepository) count(ctx context.Context, where squirrel.Sqlizer) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("squads s").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting squads: %w", err)
	}
	return total, nil
}

func (r *SquadRepository) page(ctx context.Context, where squirrel.And, page, size int) ([]*models.SquadWithStats, int64, error) {
	total, err := r.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	squads, err := r.querySquads(ctx, r.selectStats().
		Where(where).
		OrderBy("s.created_at DESC").
		Offset(offset).
		Limit(limit))
	if err != nil {
		return nil, 0, err
	}
	return squads, total, nil
}

func countyWhere(where squirrel.And, county string) squirrel.And {
	if county = strings.TrimSpace(county); county != "" {
		where = append(where, squirrel.Expr("LOWER(s.county) = LOWER(?)", county))
	}
	return where
}

// Create inserts a squad
func (r *SquadRepository) Create(ctx context.Context, s *models.Squad) error {
	sql, args, err := r.sb.Insert("squads").
		Columns("name", "description", "max_members", "county", "is_public", "voter_registration_date", "registration_center_id", "owner_id").
		Values(s.Name, s.Description, s.MaxMembers, s.County, s.IsPublic, s.VoterRegistrationDate, s.RegistrationCenterID, s.OwnerID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("error creating squad: %w", err)
	}
	return nil
}

// GetWithStats retrieves a squad with its membership aggregates
func (r *SquadRepository) GetWithStats(ctx context.Context, id uuid.UUID) (*models.SquadWithStats, error) {
	sql, args, err := r.selectStats().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	s, err := scanSquadWithStats(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSquadNotFound
		}
		return nil, fmt.Errorf("error getting squad: %w", err)
	}
	return s, nil
}

// FindJoinable returns the oldest squad at center on date that still has room
func (r *SquadRepository) FindJoinable(ctx context.Context, centerID uuid.UUID, date time.Time) (*models.SquadWithStats, error) {
	sql, args, err := r.selectStats().
		Where(squirrel.Eq{"s.registration_center_id": centerID, "s.voter_registration_date": date}).
		Where(squirrel.Or{
			squirrel.Eq{"s.max_members": nil},
			squirrel.Expr(memberCountExpr + " < s.max_members"),
		}).
		OrderBy("s.created_at").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	s, err := scanSquadWithStats(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSquadNotFound
		}
		return nil, fmt.Errorf("error finding joinable squad: %w", err)
	}
	return s, nil
}

// ListVisible lists squads that are public, owned by viewer, or have viewer as a member
func (r *SquadRepository) ListVisible(ctx context.Context, viewer uuid.UUID, filter dto.SquadFilter) ([]*models.SquadWithStats, int64, error) {
	where := countyWhere(squirrel.And{squirrel.Or{
		squirrel.Eq{"s.is_public": true},
		squirrel.Eq{"s.owner_id": viewer},
		squirrel.Expr("EXISTS (SELECT 1 FROM squad_members vm WHERE vm.squad_id = s.id AND vm.user_id = ?)", viewer),
	}}, filter.County)

	return r.page(ctx, where, filter.Page, filter.PageSize)
}

// ListPublic lists public squads only
func (r *SquadRepository) ListPublic(ctx context.Context, filter dto.SquadFilter) ([]*models.SquadWithStats, int64, error) {
	where := countyWhere(squirrel.And{squirrel.Eq{"s.is_public": true}}, filter.County)
	return r.page(ctx, where, filter.Page, filter.PageSize)
}

// ListForUser lists squads the user owns or belongs to
func (r *SquadRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.SquadWithStats, error) {
	return r.querySquads(ctx, r.selectStats().
		Where(squirrel.Or{
			squirrel.Eq{"s.owner_id": userID},
			squirrel.Expr("EXISTS (SELECT 1 FROM squad_members vm WHERE vm.squad_id = s.id AND vm.user_id = ?)", userID),
		}).
		OrderBy("s.created_at DESC"))
}

// Leaderboard ranks squads with at least one member by member count
func (r *SquadRepository) Leaderboard(ctx context.Context, county string, limit int) ([]*models.SquadWithStats, error) {
	where := countyWhere(squirrel.And{
		squirrel.Expr("EXISTS (SELECT 1 FROM squad_members lm WHERE lm.squad_id = s.id)"),
	}, county)

	return r.querySquads(ctx, r.selectStats().
		Where(where).
		OrderBy("member_count DESC", "s.created_at").
		Limit(uint64(limit)))
}

// Update writes every mutable column of s
func (r *SquadRepository) Update(ctx context.Context, s *models.Squad) error {
	sql, args, err := r.sb.Update("squads").
		SetMap(map[string]interface{}{
			"name":                    s.Name,
			"description":             s.Description,
			"max_members":             s.MaxMembers,
			"county":                  s.County,
			"is_public":               s.IsPublic,
			"voter_registration_date": s.VoterRegistrationDate,
			"updated_at":              squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating squad: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSquadNotFound
	}
	return nil
}

// Delete removes a squad together with its memberships, events and invites
func (r *SquadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("squads").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting squad: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSquadNotFound
	}
	return nil
}
