package models

import "time"

type AlertType string

const (
	AlertTypeCritical AlertType = "critical"
	AlertTypeModerate AlertType = "moderate"
	AlertTypeInfo     AlertType = "info"
	AlertTypeResolved AlertType = "resolved"
)

func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeCritical, AlertTypeModerate, AlertTypeInfo, AlertTypeResolved:
		return true
	}
	return false
}

// Alert is a single flood condition shown on the map.
type Alert struct {
	ID          string      `json:"id"`
	Type        AlertType   `json:"type"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	Time        time.Time   `json:"time"`
	Reports     int         `json:"reports"`
	Distance    string      `json:"distance"`
	Coordinates Coordinates `json:"coordinates"`
}

// NewAlert is an Alert before the feed assigns its id and timestamp.
type NewAlert struct {
	Type        AlertType   `json:"type"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	Reports     int         `json:"reports" binding:"min=0"`
	Distance    string      `json:"distance"`
	Coordinates Coordinates `json:"coordinates"`
}

// Coordinates is a [longitude, latitude] pair, serialized as a two element array.
type Coordinates [2]float64

func (c Coordinates) Longitude() float64 { return c[0] }
func (c Coordinates) Latitude() float64  { return c[1] }
