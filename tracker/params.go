package tracker

import (
	"errors"
	"fmt"

	"github.com/swdee/go-sportscam/category"
)

// ErrInvalidParams is returned when tracker tuning parameters are unusable
var ErrInvalidParams = errors.New("invalid tracker parameters")

// Params are the per category tuning thresholds of a CentroidTracker
type Params struct {
	// MaxDistance is the largest centroid displacement in pixels accepted as
	// the same object between frames
	MaxDistance float64 `toml:"max_distance"`
	// MaxDisappeared is the number of consecutive unmatched frames tolerated
	// before an object is removed
	MaxDisappeared int `toml:"max_disappeared"`
	// TrailLength is the number of recent centroids kept per object
	TrailLength int `toml:"trail_length"`
}

// DefaultParams returns the base tracking thresholds
func DefaultParams() Params {
	return Params{
		MaxDistance:    100,
		MaxDisappeared: 30,
		TrailLength:    10,
	}
}

// DefaultCategoryParams returns thresholds for every category.  Fast moving
// categories get a larger search distance, and balls a short memory
func DefaultCategoryParams() map[category.Category]Params {

	params := make(map[category.Category]Params, len(category.All))

	for _, cat := range category.All {
		params[cat] = DefaultParams()
	}

	sports := DefaultParams()
	sports.MaxDistance = 150
	sports.MaxDisappeared = 10
	params[category.Sports] = sports

	vehicles := DefaultParams()
	vehicles.MaxDistance = 150
	params[category.Vehicles] = vehicles

	return params
}

// Validate checks the parameters are usable
func (p Params) Validate() error {

	if p.MaxDistance <= 0 {
		return fmt.Errorf("%w: max distance %.2f must be positive",
			ErrInvalidParams, p.MaxDistance)
	}

	if p.MaxDisappeared < 0 {
		return fmt.Errorf("%w: max disappeared %d must not be negative",
			ErrInvalidParams, p.MaxDisappeared)
	}

	if p.TrailLength < 1 {
		return fmt.Errorf("%w: trail length %d must be at least 1",
			ErrInvalidParams, p.TrailLength)
	}

	return nil
}
