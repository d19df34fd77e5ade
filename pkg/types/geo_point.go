package types

// GeoPoint holds a WGS84 coordinate pair reported by a driver's device.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
