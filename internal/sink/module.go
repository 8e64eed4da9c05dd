package sink

import (
	"go.uber.org/fx"

	"github.com/nyuad-access/fidas-uplink/internal/config"
)

// NewCSVSinkFromConfig builds the artifact sink over the configured output
// directory.
func NewCSVSinkFromConfig(cfg *config.Config) (*CSVSink, error) {
	return NewCSVSink(cfg.Uplink.Output.CSVDir)
}

// Module provides the CSV artifact sink and the optional parquet archiver.
var Module = fx.Options(
	fx.Provide(NewCSVSinkFromConfig),
	fx.Provide(NewArchiver),
)
