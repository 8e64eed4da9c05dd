package aggregate

import (
	"time"

	"go.uber.org/fx"

	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
)

// NewFromConfig builds the production aggregator from the configured station
// metadata, using the wall clock.
func NewFromConfig(cfg *config.Config) *Aggregator {
	station := model.Station{
		Name:      cfg.Uplink.Station.Name,
		Latitude:  cfg.Uplink.Station.Latitude,
		Longitude: cfg.Uplink.Station.Longitude,
	}
	return New(station, time.Now)
}

// Module provides the hourly aggregator.
var Module = fx.Options(
	fx.Provide(NewFromConfig),
)
