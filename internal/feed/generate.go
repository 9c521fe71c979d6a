package feed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/mr1hm/go-flood-alerts/internal/models"
)

const (
	usersOnlineBase  = 1247
	usersOnlineJit   = 50
	activeAlertsBase = 23
	activeAlertsJit  = 10
	safeAreas        = 156
	maxGrowthPercent = 20
)

type rosterEntry struct {
	id          string
	typ         models.AlertType
	title       string
	location    string
	age         time.Duration
	minReports  int
	maxReports  int
	coordinates models.Coordinates
}

// roster is the fixed set of alerts every generated snapshot is built from.
var roster = []rosterEntry{
	{
		id:          "1",
		typ:         models.AlertTypeCritical,
		title:       "Severe flooding on Avenida Principal",
		location:    "Centro",
		age:         15 * time.Minute,
		minReports:  15,
		maxReports:  40,
		coordinates: models.Coordinates{-46.6333, -23.5505},
	},
	{
		id:          "2",
		typ:         models.AlertTypeModerate,
		title:       "River level rising near the bridge",
		location:    "Vila Nova",
		age:         32 * time.Minute,
		minReports:  5,
		maxReports:  20,
		coordinates: models.Coordinates{-46.6415, -23.5587},
	},
	{
		id:          "3",
		typ:         models.AlertTypeInfo,
		title:       "Heavy rain expected this afternoon",
		location:    "Jardim América",
		age:         60 * time.Minute,
		minReports:  1,
		maxReports:  10,
		coordinates: models.Coordinates{-46.6689, -23.5713},
	},
	{
		id:          "4",
		typ:         models.AlertTypeResolved,
		title:       "Street drainage cleared",
		location:    "Bela Vista",
		age:         120 * time.Minute,
		minReports:  1,
		maxReports:  8,
		coordinates: models.Coordinates{-46.6450, -23.5614},
	},
}

// Generate builds a mock snapshot relative to now. Categories, titles and
// locations are fixed; report counts, distances and statistics are drawn from
// rng, so the same seed and instant always give the same snapshot.
// The returned snapshot is not marked connected.
func Generate(rng *rand.Rand, now time.Time) models.Snapshot {
	alerts := make([]models.Alert, 0, len(roster))
	critical := 0
	for _, e := range roster {
		alerts = append(alerts, models.Alert{
			ID:          e.id,
			Type:        e.typ,
			Title:       e.title,
			Location:    e.location,
			Time:        now.Add(-e.age),
			Reports:     e.minReports + rng.IntN(e.maxReports-e.minReports+1),
			Distance:    fmt.Sprintf("%.1f km", 0.2+rng.Float64()*4.8),
			Coordinates: e.coordinates,
		})
		if e.typ == models.AlertTypeCritical {
			critical++
		}
	}

	return models.Snapshot{
		Alerts: alerts,
		Statistics: models.Statistics{
			UsersOnline:    jitter(rng, usersOnlineBase, usersOnlineJit),
			ActiveAlerts:   jitter(rng, activeAlertsBase, activeAlertsJit),
			CriticalAlerts: critical + rng.IntN(2),
			SafeAreas:      safeAreas,
			OnlineGrowth:   growth(rng),
		},
		LastUpdate: now,
	}
}

// jitter returns base shifted by a uniform amount in [-spread, spread].
func jitter(rng *rand.Rand, base, spread int) int {
	return base + rng.IntN(2*spread+1) - spread
}

func growth(rng *rand.Rand) string {
	pct := rng.IntN(maxGrowthPercent + 1)
	sign := "+"
	if rng.IntN(2) == 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%d%%", sign, pct)
}
