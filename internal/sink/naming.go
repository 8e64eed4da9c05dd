package sink

import (
	"fmt"
	"strings"
	"time"

	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
)

// artifactPrefix is the fixed stem of every emitted CSV artifact.
const artifactPrefix = "NYUAD_FIDAS_DATA"

// ArtifactName derives the output CSV name for a work unit. Instrument
// exports are named like DUSTMONITOR_17712_2025_03.txt; the year and month
// carry over so each source month accumulates into one artifact. Units that
// don't follow that pattern (SQL sources, odd file names) get a unique
// timestamped name instead.
func ArtifactName(unit string, now time.Time) string {
	parts := strings.Split(unit, "_")
	if len(parts) >= 4 {
		year := parts[2]
		month := strings.SplitN(parts[3], ".", 2)[0]
		if year != "" && month != "" {
			return fmt.Sprintf("%s_%s_%s.csv", artifactPrefix, year, month)
		}
	}
	return fmt.Sprintf("%s_%s.csv", artifactPrefix, now.In(model.StationClock).Format("20060102_150405"))
}
