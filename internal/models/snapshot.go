package models

import "time"

type Statistics struct {
	UsersOnline    int    `json:"usersOnline"`
	ActiveAlerts   int    `json:"activeAlerts"`
	CriticalAlerts int    `json:"criticalAlerts"`
	SafeAreas      int    `json:"safeAreas"`
	OnlineGrowth   string `json:"onlineGrowth"` // signed percentage, e.g. "+12%"
}

// StatisticsUpdate carries a partial Statistics. Nil fields are left unchanged.
type StatisticsUpdate struct {
	UsersOnline    *int    `json:"usersOnline,omitempty"`
	ActiveAlerts   *int    `json:"activeAlerts,omitempty"`
	CriticalAlerts *int    `json:"criticalAlerts,omitempty"`
	SafeAreas      *int    `json:"safeAreas,omitempty"`
	OnlineGrowth   *string `json:"onlineGrowth,omitempty"`
}

// Apply returns s with every non-nil field of u copied over it.
func (u StatisticsUpdate) Apply(s Statistics) Statistics {
	if u.UsersOnline != nil {
		s.UsersOnline = *u.UsersOnline
	}
	if u.ActiveAlerts != nil {
		s.ActiveAlerts = *u.ActiveAlerts
	}
	if u.CriticalAlerts != nil {
		s.CriticalAlerts = *u.CriticalAlerts
	}
	if u.SafeAreas != nil {
		s.SafeAreas = *u.SafeAreas
	}
	if u.OnlineGrowth != nil {
		s.OnlineGrowth = *u.OnlineGrowth
	}
	return s
}

// Snapshot is the full feed state at one instant. Alerts are ordered newest first.
type Snapshot struct {
	Alerts      []Alert    `json:"alerts"`
	Statistics  Statistics `json:"statistics"`
	LastUpdate  time.Time  `json:"lastUpdate"`
	IsConnected bool       `json:"isConnected"`
}

// Clone returns a copy that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Alerts = make([]Alert, len(s.Alerts))
	copy(c.Alerts, s.Alerts)
	return c
}
