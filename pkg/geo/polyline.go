package geo

import (
	"fmt"
	"math"
)

// polylinePrecision is the coordinate scale of the Polyline5 format.
const polylinePrecision = 1e5

// EncodePolyline encodes points in Google's Encoded Polyline Algorithm Format
// with 5 decimal places, as accepted by most web map viewers.
// See https://developers.google.com/maps/documentation/utilities/polylinealgorithm
func EncodePolyline(points []GeoPoint) string {
	if len(points) == 0 {
		return ""
	}

	result := make([]byte, 0, len(points)*6)
	prevLat, prevLng := 0, 0
	for _, p := range points {
		lat := int(math.Round(p.Latitude * polylinePrecision))
		lng := int(math.Round(p.Longitude * polylinePrecision))
		result = appendSigned(result, lat-prevLat)
		result = appendSigned(result, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return string(result)
}

// appendSigned appends the zigzag varint encoding of value.
func appendSigned(buf []byte, value int) []byte {
	s := value << 1
	if value < 0 {
		s = ^s
	}
	for s >= 0x20 {
		buf = append(buf, byte((0x20|(s&0x1f))+63))
		s >>= 5
	}
	return append(buf, byte(s+63))
}

// DecodePolyline decodes a Polyline5 string.
func DecodePolyline(encoded string) ([]GeoPoint, error) {
	points := make([]GeoPoint, 0, len(encoded)/4)
	lat, lng := 0, 0
	for index := 0; index < len(encoded); {
		var dLat, dLng int
		var err error
		if dLat, index, err = readSigned(encoded, index); err != nil {
			return nil, err
		}
		if dLng, index, err = readSigned(encoded, index); err != nil {
			return nil, err
		}
		lat += dLat
		lng += dLng
		points = append(points, GeoPoint{
			Latitude:  float64(lat) / polylinePrecision,
			Longitude: float64(lng) / polylinePrecision,
		})
	}
	return points, nil
}

func readSigned(encoded string, index int) (int, int, error) {
	result, shift := 0, 0
	for {
		if index >= len(encoded) {
			return 0, index, fmt.Errorf("polyline truncated at byte %d", index)
		}
		b := int(encoded[index]) - 63
		index++
		if b < 0 || b > 0x3f {
			return 0, index, fmt.Errorf("invalid polyline byte %q at %d", encoded[index-1], index-1)
		}
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	// Fix sign-bit inversion
	return (result >> 1) ^ (-(result & 1)), index, nil
}

// GreatCircle returns n points evenly spaced along the great circle from a
// to b, both included. n below 2 returns the two endpoints.
func (e Earth) GreatCircle(a, b GeoPoint, n int) []GeoPoint {
	if n < 2 {
		n = 2
	}
	total := e.Distance(a, b)
	bearing := InitialBearing(a, b)
	points := make([]GeoPoint, n)
	points[0] = a
	for i := 1; i < n-1; i++ {
		points[i] = e.Destination(a, bearing, total*float64(i)/float64(n-1))
	}
	points[n-1] = b
	return points
}
