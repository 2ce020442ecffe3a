package export

import (
	"go.uber.org/zap"

	"github.com/sells-group/world-cities/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func strPtr(s string) *string { return &s }

func sampleRows() []model.OutputRow {
	return []model.OutputRow{
		{Name: "Los Angeles", Country: "United States", Subcountry: strPtr("California"), GeonameID: 5368361, Timezone: "America/Los_Angeles"},
		{Name: "Monaco", Country: "Monaco", GeonameID: 2993458, Timezone: "Europe/Monaco"},
		{Name: "Zürich", Country: "Switzerland", Subcountry: strPtr("Zurich"), GeonameID: 2657896, Timezone: "Europe/Zurich"},
	}
}
