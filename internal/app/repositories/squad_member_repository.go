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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var membershipColumns = []string{
	"m.id", "m.user_id", "m.squad_id", "m.role", "m.has_registered", "m.joined_at", "s.name",
}

// SquadMemberRepository handles squad membership database operations
type SquadMemberRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewSquadMemberRepository creates a new SquadMemberRepository
func NewSquadMemberRepository(database *db.PostgresDB) *SquadMemberRepository {
	return &SquadMemberRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanMembership(row pgx.Row) (*models.Membership, error) {
	var m models.Membership
	if err := row.Scan(&m.ID, &m.UserID, &m.SquadID, &m.Role, &m.HasRegistered, &m.JoinedAt, &m.SquadName); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *SquadMemberRepository) selectMemberships() squirrel.SelectBuilder {
	return r.sb.Select(membershipColumns...).
		From("squad_members m").
		Join("squads s ON s.id = m.squad_id")
}

func (r *SquadMemberRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Membership, error) {
	sql, args, err := r.selectMemberships().Where(where).OrderBy("m.joined_at").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	m, err := scanMembership(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("error getting membership: %w", err)
	}
	return m, nil
}

// Add enrolls a user in a squad
func (r *SquadMemberRepository) Add(ctx context.Context, m *models.Membership) error {
	sql, args, err := r.sb.Insert("squad_members").
		Columns("user_id", "squad_id", "role", "has_registered").
		Values(m.UserID, m.SquadID, m.Role, m.HasRegistered).
		Suffix("RETURNING id, joined_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&m.ID, &m.JoinedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "squad_members_user_squad_key") {
			return apperrors.ErrAlreadyMember
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrSquadNotFound
		}
		return fmt.Errorf("error adding membership: %w", err)
	}
	return nil
}

// Get returns the membership of user in squad
func (r *SquadMemberRepository) Get(ctx context.Context, squadID, userID uuid.UUID) (*models.Membership, error) {
	return r.getOne(ctx, squirrel.Eq{"m.squad_id": squadID, "m.user_id": userID})
}

// GetByID returns a membership by its ID
func (r *SquadMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	return r.getOne(ctx, squirrel.Eq{"m.id": id})
}

// FindOtherMembership returns a membership of user in a squad other than
// excludeSquadID that the user does not own
func (r *SquadMemberRepository) FindOtherMembership(ctx context.Context, userID, excludeSquadID uuid.UUID) (*models.Membership, error) {
	return r.getOne(ctx, squirrel.And{
		squirrel.Eq{"m.user_id": userID},
		squirrel.NotEq{"m.squad_id": excludeSquadID},
		squirrel.NotEq{"s.owner_id": userID},
	})
}

// ListByUser lists the memberships of a user, newest first
func (r *SquadMemberRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error) {
	sql, args, err := r.selectMemberships().
		Where(squirrel.Eq{"m.user_id": userID}).
		OrderBy("m.joined_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	memberships := make([]*models.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// ListBySquad lists the members of a squad together with their user records
func (r *SquadMemberRepository) ListBySquad(ctx context.Context, squadID uuid.UUID) ([]*models.Membership, error) {
	sql, args, err := r.sb.Select(append(membershipColumns,
		"u.id", "u.phone_number", "u.email", "u.first_name", "u.last_name", "u.county", "u.profile_pic", "u.created_at")...).
		From("squad_members m").
		Join("squads s ON s.id = m.squad_id").
		Join("users u ON u.id = m.user_id").
		Where(squirrel.Eq{"m.squad_id": squadID}).
		OrderBy("m.joined_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	memberships := make([]*models.Membership, 0)
	for rows.Next() {
		var m models.Membership
		var u models.User
		err := rows.Scan(
			&m.ID, &m.UserID, &m.SquadID, &m.Role, &m.HasRegistered, &m.JoinedAt, &m.SquadName,
			&u.ID, &u.PhoneNumber, &u.Email, &u.FirstName, &u.LastName, &u.County, &u.ProfilePic, &u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		m.User = &u
		memberships = append(memberships, &m)
	}
	return memberships, rows.Err()
}

// CountLeaders counts the leaders of a squad
func (r *SquadMemberRepository) CountLeaders(ctx context.Context, squadID uuid.UUID) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("squad_members").
		Where(squirrel.Eq{"squad_id": squadID, "role": models.RoleLeader}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting leaders: %w", err)
	}
	return count, nil
}

// Remove deletes a membership
func (r *SquadMemberRepository) Remove(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("squad_members").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error removing membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMembershipNotFound
	}
	return nil
}

// UpdateRole sets a membership's role
func (r *SquadMemberRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	return r.update(ctx, id, "role", role)
}

// UpdateRegistered sets a membership's has_registered flag
func (r *SquadMemberRepository) UpdateRegistered(ctx context.Context, id uuid.UUID, registered bool) error {
	return r.update(ctx, id, "has_registered", registered)
}

func (r *SquadMemberRepository) update(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	sql, args, err := r.sb.Update("squad_members").Set(column, value).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMembershipNotFound
	}
	return nil
}
