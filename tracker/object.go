package tracker

import (
	"sort"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/detection"
)

// TrackedObject represents an object tracked across frames by a
// CentroidTracker
type TrackedObject struct {
	// ID is unique within the category tracker that assigned it and never
	// reused until the tracker is reset
	ID int
	// Category the object was tracked under
	Category category.Category
	// ClassID and ClassName are the detector class of the latest match
	ClassID   int
	ClassName string
	// Confidence is the confidence/probability of the latest match
	Confidence float32
	// Box is the bounding box of the latest match
	Box detection.BoxRect
	// Centroid is the latest center point of the object
	Centroid detection.Point
	// Area is the bounding box area of the latest match
	Area int
	// Disappeared is the number of consecutive frames the object has gone
	// unmatched
	Disappeared int
	// Trail is the recent centroid history, oldest first
	Trail []detection.Point
}

// Active reports if the object was matched in the most recent update
func (o TrackedObject) Active() bool {
	return o.Disappeared == 0
}

// newTrackedObject is a constructor function for a TrackedObject created from
// an unmatched detection
func newTrackedObject(id int, cat category.Category, det detection.Detection,
	centroid detection.Point) TrackedObject {

	obj := TrackedObject{
		ID:       id,
		Category: cat,
	}
	obj.apply(det, centroid)

	return obj
}

// apply copies the attributes of a matched detection onto the object
func (o *TrackedObject) apply(det detection.Detection, centroid detection.Point) {
	o.ClassID = det.ClassID
	o.ClassName = det.ClassName
	o.Confidence = det.Confidence
	o.Box = det.Box
	o.Centroid = centroid
	o.Area = det.Area

	if o.Area == 0 {
		o.Area = det.Box.Area()
	}

	o.Disappeared = 0
}

// SortedIDs returns the ids of a snapshot in ascending order
func SortedIDs(objs map[int]TrackedObject) []int {

	ids := make([]int, 0, len(objs))

	for id := range objs {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}
