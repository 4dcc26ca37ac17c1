package category

import (
	"errors"
	"fmt"
	"sort"

	"github.com/swdee/go-sportscam/detection"
)

// Category is a coarse semantic grouping of raw detector class ids
type Category string

const (
	People      Category = "people"
	Vehicles    Category = "vehicles"
	Animals     Category = "animals"
	Sports      Category = "sports"
	Electronics Category = "electronics"
	Furniture   Category = "furniture"
	Food        Category = "food"
	Other       Category = "other"
)

// All is every known category in display order
var All = []Category{People, Vehicles, Animals, Sports, Electronics, Furniture,
	Food, Other}

// ErrCategoryConflict is returned when a class id is assigned to more than one
// category
var ErrCategoryConflict = errors.New("class id mapped to multiple categories")

// ErrUnknownCategory is returned when a table references a category that is
// not one of All
var ErrUnknownCategory = errors.New("unknown category")

// Valid reports if c is one of the known categories
func (c Category) Valid() bool {
	for _, k := range All {
		if k == c {
			return true
		}
	}
	return false
}

// COCOTable is the default class id table for models trained on the 80 class
// COCO dataset.  Ids not listed fall through to Other
func COCOTable() map[Category][]int {
	return map[Category][]int{
		People:      {0},
		Vehicles:    {1, 2, 3, 4, 5, 6, 7, 8},
		Animals:     {14, 15, 16, 17, 18, 19, 20, 21, 22, 23},
		Sports:      {29, 30, 31, 32, 33, 34, 35, 36, 37, 38},
		Electronics: {62, 63, 64, 65, 66, 67, 68, 69, 70},
		Furniture:   {56, 57, 58, 59, 60, 61},
		Food:        {46, 47, 48, 49, 50, 51, 52, 53, 54, 55},
	}
}

// Router classifies detections into categories using a static id table
type Router struct {
	byID map[int]Category
}

// NewRouter builds a Router from a category to class id table.  Every id must
// belong to at most one category
func NewRouter(table map[Category][]int) (*Router, error) {

	r := &Router{
		byID: make(map[int]Category),
	}

	// iterate in a fixed order so conflict errors are deterministic
	cats := make([]Category, 0, len(table))
	for cat := range table {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	for _, cat := range cats {
		if !cat.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
		}

		for _, id := range table[cat] {
			if prev, exists := r.byID[id]; exists && prev != cat {
				return nil, fmt.Errorf("%w: id %d in %q and %q",
					ErrCategoryConflict, id, prev, cat)
			}
			r.byID[id] = cat
		}
	}

	return r, nil
}

// NewCOCORouter returns a Router using COCOTable
func NewCOCORouter() *Router {
	r, err := NewRouter(COCOTable())
	if err != nil {
		panic(err)
	}
	return r
}

// CategorizeID returns the category of a raw class id.  Unmapped ids belong
// to Other
func (r *Router) CategorizeID(classID int) Category {
	if cat, ok := r.byID[classID]; ok {
		return cat
	}
	return Other
}

// Categorize returns the category of a detection
func (r *Router) Categorize(det detection.Detection) Category {
	return r.CategorizeID(det.ClassID)
}

// Partition groups detections by category.  The result holds a key for every
// known category, with an empty slice where nothing was detected
func (r *Router) Partition(dets []detection.Detection) map[Category][]detection.Detection {

	out := make(map[Category][]detection.Detection, len(All))

	for _, cat := range All {
		out[cat] = []detection.Detection{}
	}

	for _, det := range dets {
		cat := r.Categorize(det)
		out[cat] = append(out[cat], det)
	}

	return out
}
