package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	h3 "github.com/uber/h3-go/v4"
)

// H3 resolution bounds.
const (
	MinResolution = 0
	MaxResolution = 15

	// DefaultResolution is the library-wide default H3 resolution for
	// deriving origin/destination cell indices.
	DefaultResolution = 8
)

// ErrResolution indicates an H3 resolution outside [0, 15].
var ErrResolution = errors.New("geo: H3 resolution out of range")

// CheckResolution validates an H3 resolution.
func CheckResolution(res int) error {
	if res < MinResolution || res > MaxResolution {
		return fmt.Errorf("%w: %d", ErrResolution, res)
	}

	return nil
}

// CellString derives the H3 cell index of (lat, lon) at res, rendered as the
// canonical lowercase hex string.
func CellString(lat, lon float64, res int) (string, error) {
	if err := CheckResolution(res); err != nil {
		return "", err
	}

	return h3.LatLngToCell(h3.NewLatLng(lat, lon), res).String(), nil
}

// ValidCell reports whether s parses as a valid H3 cell index.
func ValidCell(s string) bool {
	u, err := strconv.ParseUint(strings.TrimSpace(s), 16, 64)
	if err != nil {
		return false
	}

	return h3.Cell(u).IsValid()
}

// CellResolution returns the resolution encoded in an H3 cell string,
// or -1 when the string is not a valid cell.
func CellResolution(s string) int {
	u, err := strconv.ParseUint(strings.TrimSpace(s), 16, 64)
	if err != nil {
		return -1
	}
	cell := h3.Cell(u)
	if !cell.IsValid() {
		return -1
	}

	return cell.Resolution()
}

// CellMatches reports whether the stored cell string equals the cell derived
// from (lat, lon) at res. Comparison is case-insensitive on the hex form.
func CellMatches(stored string, lat, lon float64, res int) bool {
	derived, err := CellString(lat, lon, res)
	if err != nil {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(stored), derived)
}
