package api

import (
	"github.com/mr1hm/go-flood-alerts/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func point(c models.Coordinates) Geometry {
	return Geometry{
		Type:        "Point",
		Coordinates: []float64{c.Longitude(), c.Latitude()},
	}
}

func featureCollection(features []Feature) FeatureCollection {
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func alertsToGeoJSON(alerts []models.Alert) FeatureCollection {
	features := make([]Feature, 0, len(alerts))

	for _, a := range alerts {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: point(a.Coordinates),
			Properties: map[string]any{
				"id":       a.ID,
				"type":     a.Type,
				"title":    a.Title,
				"location": a.Location,
				"time":     a.Time,
				"reports":  a.Reports,
				"distance": a.Distance,
			},
		})
	}

	return featureCollection(features)
}

func reportsToGeoJSON(reports []models.FloodReport) FeatureCollection {
	features := make([]Feature, 0, len(reports))

	for _, r := range reports {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: point(r.Coordinates()),
			Properties: map[string]any{
				"id":              r.ID,
				"title":           r.Title,
				"message":         r.Message,
				"severity":        r.Severity,
				"neighborhood":    r.Neighborhood,
				"address":         r.Address,
				"water_level":     r.WaterLevel,
				"affected_people": r.AffectedPeople,
				"status":          r.Status,
				"reported_at":     r.ReportedAt,
				"approved_at":     r.ApprovedAt,
			},
		})
	}

	return featureCollection(features)
}
