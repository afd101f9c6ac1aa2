package geospatial

import (
	"encoding/json"
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// ValidateGeoJSON validates a GeoJSON string
func ValidateGeoJSON(geojsonStr string) (orb.Geometry, error) {
	var raw map[string]interface{}
	err := json.Unmarshal([]byte(geojsonStr), &raw)
	if err != nil {
		return nil, err
	}

	feature, err := geojson.UnmarshalFeature([]byte(geojsonStr))
	if err != nil {
		return nil, err
	}

	if feature.Geometry == nil {
		return nil, errors.New("invalid GeoJSON: no geometry")
	}

	return feature.Geometry, nil
}

// DistanceMeters returns the great-circle distance between two lon/lat points
func DistanceMeters(lon1, lat1, lon2, lat2 float64) float64 {
	return geo.Distance(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

// CalculateCentroid calculates the centroid of a geometry
func CalculateCentroid(geometry orb.Geometry) orb.Point {
	point, _ := planarCentroid(geometry)
	return point
}

func planarCentroid(geometry orb.Geometry) (orb.Point, bool) {
	switch g := geometry.(type) {
	case orb.Point:
		return g, true
	case orb.MultiPoint:
		if len(g) == 0 {
			return orb.Point{}, false
		}
		var lon, lat float64
		for _, p := range g {
			lon += p[0]
			lat += p[1]
		}
		n := float64(len(g))
		return orb.Point{lon / n, lat / n}, true
	default:
		bound := geometry.Bound()
		return bound.Center(), true
	}
}
