package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/app/repositories"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/Simoh8/pamoja-vote/internal/pkg/helpers"
	"github.com/Simoh8/pamoja-vote/internal/pkg/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// defaultWard is recorded for inline centers that do not name a ward
	defaultWard = "Unknown"

	earthRadiusKM         = 6371.0
	defaultNearbyRadiusKM = 10.0
	defaultNearbyLimit    = 20
)

var emptyOpeningHours = json.RawMessage(`{}`)

// CenterService defines the interface for center directory operations
type CenterService interface {
	CreateCenter(ctx context.Context, req *dto.CreateCenterRequest) (*dto.CenterResponse, error)
	GetCenter(ctx context.Context, id uuid.UUID) (*dto.CenterResponse, error)
	ListCenters(ctx context.Context, filter dto.CenterFilter) (*dto.CenterListResponse, error)
	ListCentersByCounty(ctx context.Context, county string) ([]dto.CenterResponse, error)
	NearbyCenters(ctx context.Context, q *dto.NearbyCentersQuery) ([]dto.CenterResponse, error)
	UpdateCenter(ctx context.Context, id uuid.UUID, req *dto.UpdateCenterRequest) (*dto.CenterResponse, error)
	DeleteCenter(ctx context.Context, id uuid.UUID) error
}

type centerServiceImpl struct {
	centerRepo CenterStore
	logger     zerolog.Logger
}

// NewCenterService creates a new CenterService
func NewCenterService(centerRepo CenterStore, logger zerolog.Logger) CenterService {
	return &centerServiceImpl{
		centerRepo: centerRepo,
		logger:     logger,
	}
}

func normalizeOpeningHours(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return emptyOpeningHours, nil
	}
	var v map[string]interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, apperrors.NewValidationError("opening_hours", "opening_hours must be a JSON object")
	}
	return raw, nil
}

func (s *centerServiceImpl) CreateCenter(ctx context.Context, req *dto.CreateCenterRequest) (*dto.CenterResponse, error) {
	hours, err := normalizeOpeningHours(req.OpeningHours)
	if err != nil {
		return nil, err
	}

	center := &models.Center{
		Name:               strings.TrimSpace(req.Name),
		County:             strings.TrimSpace(req.County),
		Constituency:       strings.TrimSpace(req.Constituency),
		Ward:               strings.TrimSpace(req.Ward),
		PollingStationName: strings.TrimSpace(req.PollingStationName),
		Address:            strings.TrimSpace(req.Address),
		Lat:                req.Lat,
		Lng:                req.Lng,
		OpeningHours:       hours,
	}
	if center.Name == "" || center.County == "" || center.Address == "" {
		return nil, apperrors.NewValidationError("", "name, county and address are required")
	}

	if err := s.centerRepo.Create(ctx, center); err != nil {
		return nil, err
	}

	s.logger.Info().Str("centerID", center.ID.String()).Str("county", center.County).Msg("Center created")
	resp := dto.NewCenterResponse(center)
	return &resp, nil
}

func (s *centerServiceImpl) GetCenter(ctx context.Context, id uuid.UUID) (*dto.CenterResponse, error) {
	center, err := s.centerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCenterResponse(center)
	return &resp, nil
}

func (s *centerServiceImpl) ListCenters(ctx context.Context, filter dto.CenterFilter) (*dto.CenterListResponse, error) {
	centers, total, err := s.centerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.CenterListResponse{
		Centers:    toCenterResponses(centers),
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

func (s *centerServiceImpl) ListCentersByCounty(ctx context.Context, county string) ([]dto.CenterResponse, error) {
	centers, err := s.centerRepo.ListByCounty(ctx, county)
	if err != nil {
		return nil, err
	}
	return toCenterResponses(centers), nil
}

// NearbyCenters returns geocoded centers within the radius, closest first
func (s *centerServiceImpl) NearbyCenters(ctx context.Context, q *dto.NearbyCentersQuery) ([]dto.CenterResponse, error) {
	radius := q.RadiusKM
	if radius <= 0 {
		radius = defaultNearbyRadiusKM
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultNearbyLimit
	}

	candidates, err := s.centerRepo.ListWithin(ctx, boundingBox(q.Lat, q.Lng, radius))
	if err != nil {
		return nil, err
	}

	results := make([]dto.CenterResponse, 0, len(candidates))
	for _, c := range candidates {
		if c.Lat == nil || c.Lng == nil {
			continue
		}
		d := haversineKM(q.Lat, q.Lng, *c.Lat, *c.Lng)
		if d > radius {
			continue
		}
		resp := dto.NewCenterResponse(c)
		dist := math.Round(d*100) / 100
		resp.DistanceKM = &dist
		results = append(results, resp)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].DistanceKM < *results[j].DistanceKM
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *centerServiceImpl) UpdateCenter(ctx context.Context, id uuid.UUID, req *dto.UpdateCenterRequest) (*dto.CenterResponse, error) {
	center, err := s.centerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	setTrimmed(&center.Name, req.Name)
	setTrimmed(&center.County, req.County)
	setTrimmed(&center.Constituency, req.Constituency)
	setTrimmed(&center.Ward, req.Ward)
	setTrimmed(&center.PollingStationName, req.PollingStationName)
	setTrimmed(&center.Address, req.Address)
	if req.Lat != nil {
		center.Lat = req.Lat
	}
	if req.Lng != nil {
		center.Lng = req.Lng
	}
	if req.OpeningHours != nil {
		hours, err := normalizeOpeningHours(req.OpeningHours)
		if err != nil {
			return nil, err
		}
		center.OpeningHours = hours
	}
	if center.Name == "" || center.County == "" || center.Address == "" {
		return nil, apperrors.NewValidationError("", "name, county and address cannot be blank")
	}

	if err := s.centerRepo.Update(ctx, center); err != nil {
		return nil, err
	}
	resp := dto.NewCenterResponse(center)
	return &resp, nil
}

func (s *centerServiceImpl) DeleteCenter(ctx context.Context, id uuid.UUID) error {
	if err := s.centerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("centerID", id.String()).Msg("Center deleted")
	return nil
}

// resolveCenter turns a squad's center reference into a stored center.
// Inline descriptors reuse a case-insensitive (name, county) match or create one.
func resolveCenter(ctx context.Context, centers CenterStore, ref dto.CenterRef, squadCounty string) (*models.Center, error) {
	switch ref.Kind {
	case dto.CenterRefNone:
		return nil, nil

	case dto.CenterRefByID:
		if ref.ID == uuid.Nil {
			return nil, apperrors.NewValidationError("registration_center", fmt.Sprintf("Invalid registration center ID %q", ref.RawID))
		}
		center, err := centers.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrCenterNotFound) {
				return nil, apperrors.NewValidationError("registration_center", "Registration center not found")
			}
			return nil, err
		}
		return center, nil

	case dto.CenterRefInline:
		in := ref.Inline
		name := strings.TrimSpace(in.Name)
		if !validation.NewStringValidation(name).WithMaxLength(validation.NameMaxLength).Validate() {
			return nil, apperrors.NewValidationError("registration_center", "Registration center name is required")
		}
		county := strings.TrimSpace(in.County)
		if county == "" {
			county = squadCounty
		}

		existing, err := centers.FindByNameAndCounty(ctx, name, county)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrCenterNotFound) {
			return nil, err
		}

		ward := strings.TrimSpace(in.Ward)
		if ward == "" {
			ward = defaultWard
		}
		address := strings.TrimSpace(in.Address)
		if address == "" {
			address = fmt.Sprintf("%s, %s", name, ward)
		}

		center := &models.Center{
			Name:               name,
			County:             county,
			Constituency:       strings.TrimSpace(in.Constituency),
			Ward:               ward,
			PollingStationName: name,
			Address:            address,
			OpeningHours:       emptyOpeningHours,
		}
		if err := centers.Create(ctx, center); err != nil {
			return nil, err
		}
		return center, nil
	}

	return nil, apperrors.NewValidationError("registration_center", "Unsupported registration center reference")
}

func toCenterResponses(centers []*models.Center) []dto.CenterResponse {
	out := make([]dto.CenterResponse, 0, len(centers))
	for _, c := range centers {
		out = append(out, dto.NewCenterResponse(c))
	}
	return out
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// haversineKM is the great-circle distance between two coordinates
func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}

// boundingBox is a coarse box around a point that contains the radius circle
func boundingBox(lat, lng, radiusKM float64) repositories.Bounds {
	dLat := radiusKM / 111.0
	cos := math.Cos(lat * math.Pi / 180)
	dLng := 180.0
	if cos > 0.01 {
		dLng = radiusKM / (111.0 * cos)
	}
	return repositories.Bounds{
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
		MinLng: lng - dLng,
		MaxLng: lng + dLng,
	}
}
