package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/db"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var centerColumns = []string{
	"id", "name", "county", "constituency", "ward", "polling_station_name",
	"address", "lat", "lng", "opening_hours", "created_at",
}

// Bounds is a latitude/longitude box used to pre-filter nearby searches
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// CenterRepository handles center database operations
type CenterRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewCenterRepository creates a new CenterRepository
func NewCenterRepository(database *db.PostgresDB) *CenterRepository {
	return &CenterRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanCenter(row pgx.Row) (*models.Center, error) {
	var c models.Center
	err := row.Scan(
		&c.ID, &c.Name, &c.County, &c.Constituency, &c.Ward, &c.PollingStationName,
		&c.Address, &c.Lat, &c.Lng, &c.OpeningHours, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CenterRepository) queryCenters(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Center, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	centers := make([]*models.Center, 0)
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		centers = append(centers, c)
	}
	return centers, rows.Err()
}

// Create inserts a center
func (r *CenterRepository) Create(ctx context.Context, c *models.Center) error {
	sql, args, err := r.sb.Insert("centers").
		Columns("name", "county", "constituency", "ward", "polling_station_name", "address", "lat", "lng", "opening_hours").
		Values(c.Name, c.County, c.Constituency, c.Ward, c.PollingStationName, c.Address, c.Lat, c.Lng, c.OpeningHours).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("error creating center: %w", err)
	}
	return nil
}

// GetByID retrieves a center by ID
func (r *CenterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Center, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// FindByNameAndCounty matches name and county case-insensitively
func (r *CenterRepository) FindByNameAndCounty(ctx context.Context, name, county string) (*models.Center, error) {
	return r.getOne(ctx, squirrel.And{
		squirrel.Expr("LOWER(name) = LOWER(?)", strings.TrimSpace(name)),
		squirrel.Expr("LOWER(county) = LOWER(?)", strings.TrimSpace(county)),
	})
}

func (r *CenterRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Center, error) {
	sql, args, err := r.sb.Select(centerColumns...).From("centers").Where(where).OrderBy("created_at").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	c, err := scanCenter(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCenterNotFound
		}
		return nil, fmt.Errorf("error getting center: %w", err)
	}
	return c, nil
}

func centerFilterWhere(filter dto.CenterFilter) squirrel.And {
	where := squirrel.And{}
	if county := strings.TrimSpace(filter.County); county != "" {
		where = append(where, squirrel.Expr("LOWER(county) = LOWER(?)", county))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"address": pattern},
			squirrel.ILike{"county": pattern},
		})
	}
	return where
}

// List returns one page of centers matching filter and the total match count
func (r *CenterRepository) List(ctx context.Context, filter dto.CenterFilter) ([]*models.Center, int64, error) {
	where := centerFilterWhere(filter)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("centers").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting centers: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	centers, err := r.queryCenters(ctx, r.sb.Select(centerColumns...).
		From("centers").
		Where(where).
		OrderBy("county", "name").
		Offset(offset).
		Limit(limit))
	if err != nil {
		return nil, 0, err
	}

	return centers, total, nil
}

// ListByCounty returns every center of a county ordered by name
func (r *CenterRepository) ListByCounty(ctx context.Context, county string) ([]*models.Center, error) {
	return r.queryCenters(ctx, r.sb.Select(centerColumns...).
		From("centers").
		Where(squirrel.Expr("LOWER(county) = LOWER(?)", strings.TrimSpace(county))).
		OrderBy("name"))
}

// ListWithin returns geocoded centers inside b
func (r *CenterRepository) ListWithin(ctx context.Context, b Bounds) ([]*models.Center, error) {
	return r.queryCenters(ctx, r.sb.Select(centerColumns...).
		From("centers").
		Where(squirrel.And{
			squirrel.NotEq{"lat": nil},
			squirrel.NotEq{"lng": nil},
			squirrel.GtOrEq{"lat": b.MinLat},
			squirrel.LtOrEq{"lat": b.MaxLat},
			squirrel.GtOrEq{"lng": b.MinLng},
			squirrel.LtOrEq{"lng": b.MaxLng},
		}))
}

// Update writes every mutable column of c
func (r *CenterRepository) Update(ctx context.Context, c *models.Center) error {
	sql, args, err := r.sb.Update("centers").
		SetMap(map[string]interface{}{
			"name":                 c.Name,
			"county":               c.County,
			"constituency":         c.Constituency,
			"ward":                 c.Ward,
			"polling_station_name": c.PollingStationName,
			"address":              c.Address,
			"lat":                  c.Lat,
			"lng":                  c.Lng,
			"opening_hours":        c.OpeningHours,
		}).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating center: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCenterNotFound
	}
	return nil
}

// Delete removes a center; squads keep existing with no center
func (r *CenterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("centers").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting center: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCenterNotFound
	}
	return nil
}
