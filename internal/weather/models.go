package weather

import (
	"time"
)

// Location is a resolved place to fetch weather for, produced either by
// IP-based detection or by geocoding a user-entered city name.
type Location struct {
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Snapshot is one point-in-time weather reading plus metadata. All
// temperature fields are pointers because the upstream payload may omit
// any of them; an absent field renders as a missing menu line, not an
// error.
type Snapshot struct {
	TempC         *float64  `json:"tempC" toml:"temp_c"`
	FeelsLikeC    *float64  `json:"feelsLikeC" toml:"feels_like_c"`
	Condition     string    `json:"condition" toml:"condition"`
	HighC         *float64  `json:"highC" toml:"high_c"`
	LowC          *float64  `json:"lowC" toml:"low_c"`
	TomorrowHighC *float64  `json:"tomorrowHighC" toml:"tomorrow_high_c"`
	TomorrowLowC  *float64  `json:"tomorrowLowC" toml:"tomorrow_low_c"`
	City          string    `json:"city" toml:"city"`
	UpdatedAt     time.Time `json:"updatedAt" toml:"updated_at"`
}

// HasTemp reports whether the snapshot carries a usable current
// temperature. A snapshot without one is not worth displaying or
// falling back to.
func (s *Snapshot) HasTemp() bool {
	return s != nil && s.TempC != nil
}
