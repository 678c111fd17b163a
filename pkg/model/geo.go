package model

const GeoPointType = "Point"

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude],
// matching the order MongoDB expects for 2dsphere queries.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewGeoPoint(longitude, latitude float64) *GeoPoint {
	return &GeoPoint{
		Type:        GeoPointType,
		Coordinates: []float64{longitude, latitude},
	}
}

func (p *GeoPoint) Longitude() float64 {
	return p.Coordinates[0]
}

func (p *GeoPoint) Latitude() float64 {
	return p.Coordinates[1]
}

// Valid reports whether the point is a well-formed GeoJSON point.
// Coordinate ranges are intentionally not checked; the store accepts
// whatever the caller reported.
func (p *GeoPoint) Valid() bool {
	return p != nil && p.Type == GeoPointType && len(p.Coordinates) == 2
}
