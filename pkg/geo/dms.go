package geo

import (
	"strconv"
	"strings"

	"github.com/NERVsystems/pathclear/pkg/linkerr"
)

// ParseCoordinate parses a single latitude or longitude given either as a
// decimal string ("-93.265") or in degrees-minutes-seconds form.
// Accepted DMS layouts are "44-58-40.1 N", "N44-58-40.1" and `44°58'40.1"N`;
// S and W hemispheres yield negative values.
func ParseCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, linkerr.Invalid("coordinate", "empty coordinate")
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if !Finite(v) {
			return 0, linkerr.Invalid("coordinate", "non-finite coordinate %q", s)
		}
		return v, nil
	}
	return ParseDMS(s)
}

// ParseDMS parses a degrees-minutes-seconds coordinate string.
func ParseDMS(s string) (float64, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))

	sign := 1.0
	hemi := false
	for _, h := range []string{"N", "S", "E", "W"} {
		if strings.HasPrefix(upper, h) || strings.HasSuffix(upper, h) {
			if h == "S" || h == "W" {
				sign = -1
			}
			upper = strings.Trim(strings.TrimSuffix(strings.TrimPrefix(upper, h), h), " ")
			hemi = true
			break
		}
	}
	if strings.HasPrefix(upper, "-") {
		if hemi {
			return 0, linkerr.Invalid("coordinate", "both sign and hemisphere given in %q", s)
		}
		sign = -1
		upper = upper[1:]
	}

	fields := strings.FieldsFunc(upper, func(r rune) bool {
		switch r {
		case '-', '°', '\'', '"', ':', ' ', '′', '″':
			return true
		}
		return false
	})
	if len(fields) == 0 || len(fields) > 3 {
		return 0, linkerr.Invalid("coordinate", "invalid DMS format: %q", s)
	}

	var parts [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || !Finite(v) || v < 0 {
			return 0, linkerr.Invalid("coordinate", "invalid DMS component %q in %q", f, s)
		}
		parts[i] = v
	}
	if parts[1] >= 60 || parts[2] >= 60 {
		return 0, linkerr.Invalid("coordinate", "minutes and seconds must be below 60 in %q", s)
	}

	return sign * (parts[0] + parts[1]/60 + parts[2]/3600), nil
}

// ParsePoint parses a latitude/longitude pair, each in decimal or DMS form,
// and validates the result.
func ParsePoint(lat, lon string) (GeoPoint, error) {
	la, err := ParseCoordinate(lat)
	if err != nil {
		return GeoPoint{}, err
	}
	lo, err := ParseCoordinate(lon)
	if err != nil {
		return GeoPoint{}, err
	}
	p := GeoPoint{Latitude: la, Longitude: lo}
	if err := p.Validate(); err != nil {
		return GeoPoint{}, err
	}
	return p, nil
}
