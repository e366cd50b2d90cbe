package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	appModels "github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// CenterStore is the part of the center repository seeding needs
type CenterStore interface {
	FindByNameAndCounty(ctx context.Context, name, county string) (*appModels.Center, error)
	Create(ctx context.Context, c *appModels.Center) error
}

func coord(v float64) *float64 { return &v }

var weekdayHours = json.RawMessage(`{"mon-fri":"08:00-17:00","sat":"09:00-13:00"}`)

// DefaultCenters are the registration centers present on a fresh install
var DefaultCenters = []appModels.Center{
	{
		Name:               "Uhuru Primary",
		County:             "Nairobi",
		Constituency:       "Starehe",
		Ward:               "Pangani",
		PollingStationName: "Uhuru Primary",
		Address:            "Juja Road, Nairobi",
		Lat:                coord(-1.2697),
		Lng:                coord(36.8386),
	},
	{
		Name:               "Kenyatta International Convention Centre",
		County:             "Nairobi",
		Constituency:       "Starehe",
		Ward:               "Nairobi Central",
		PollingStationName: "KICC",
		Address:            "Harambee Avenue, Nairobi",
		Lat:                coord(-1.2884),
		Lng:                coord(36.8233),
	},
	{
		Name:               "Tononoka Hall",
		County:             "Mombasa",
		Constituency:       "Mvita",
		Ward:               "Tononoka",
		PollingStationName: "Tononoka Hall",
		Address:            "Tononoka, Mombasa",
		Lat:                coord(-4.0435),
		Lng:                coord(39.6682),
	},
	{
		Name:               "Kisumu Social Hall",
		County:             "Kisumu",
		Constituency:       "Kisumu Central",
		Ward:               "Railways",
		PollingStationName: "Kisumu Social Hall",
		Address:            "Oginga Odinga Street, Kisumu",
		Lat:                coord(-0.0917),
		Lng:                coord(34.7680),
	},
	{
		Name:               "Nakuru Town Hall",
		County:             "Nakuru",
		Constituency:       "Nakuru Town East",
		Ward:               "Biashara",
		PollingStationName: "Nakuru Town Hall",
		Address:            "Kenyatta Avenue, Nakuru",
		Lat:                coord(-0.2833),
		Lng:                coord(36.0667),
	},
}

// CreateDefaultData inserts the default centers that do not exist yet.
// Every center is attempted; failures are joined into the returned error.
func CreateDefaultData(ctx context.Context, centers CenterStore, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default registration centers...")

	var finalErr error
	created := 0
	for _, def := range DefaultCenters {
		_, err := centers.FindByNameAndCounty(ctx, def.Name, def.County)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrCenterNotFound) {
			lgr.Error().Err(err).Str("center", def.Name).Msg("Error looking up default center")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		center := def
		center.OpeningHours = weekdayHours
		if err := centers.Create(ctx, &center); err != nil {
			lgr.Error().Err(err).Str("center", def.Name).Msg("Error creating default center")
			finalErr = errors.Join(finalErr, fmt.Errorf("center %q: %w", def.Name, err))
			continue
		}
		created++
	}

	lgr.Info().Int("created", created).Msg("Default registration centers checked")
	return finalErr
}
