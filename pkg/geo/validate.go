package geo

import "github.com/NERVsystems/pathclear/pkg/linkerr"

// ValidateCoords checks that latitude is in [-90,90], longitude in [-180,180],
// and both are finite.
func ValidateCoords(lat, lon float64) error {
	if !Finite(lat) || lat < -90 || lat > 90 {
		return linkerr.Invalid("latitude", "invalid latitude value: %f (must be between -90 and 90)", lat)
	}
	if !Finite(lon) || lon < -180 || lon > 180 {
		return linkerr.Invalid("longitude", "invalid longitude value: %f (must be between -180 and 180)", lon)
	}
	return nil
}
