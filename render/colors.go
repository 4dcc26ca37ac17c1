package render

import (
	"image/color"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/events"
)

var (
	// classColors is the palette objects are painted with, indexed by ID
	classColors = []color.RGBA{
		// Distinct colors
		{R: 255, G: 56, B: 56, A: 255},   // #FF3838
		{R: 255, G: 112, B: 31, A: 255},  // #FF701F
		{R: 255, G: 178, B: 29, A: 255},  // #FFB21D
		{R: 207, G: 210, B: 49, A: 255},  // #CFD231
		{R: 72, G: 249, B: 10, A: 255},   // #48F90A
		{R: 26, G: 147, B: 52, A: 255},   // #1A9334
		{R: 0, G: 212, B: 187, A: 255},   // #00D4BB
		{R: 0, G: 194, B: 255, A: 255},   // #00C2FF
		{R: 52, G: 69, B: 147, A: 255},   // #344593
		{R: 100, G: 115, B: 255, A: 255}, // #6473FF
		{R: 0, G: 24, B: 236, A: 255},    // #0018EC
		{R: 132, G: 56, B: 255, A: 255},  // #8438FF
		{R: 82, G: 0, B: 133, A: 255},    // #520085
		{R: 255, G: 149, B: 200, A: 255}, // #FF95C8
		{R: 255, G: 55, B: 199, A: 255},  // #FF37C7
		{R: 255, G: 157, B: 151, A: 255}, // #FF9D97
		{R: 44, G: 153, B: 168, A: 255},  // #2C99A8
		{R: 61, G: 219, B: 134, A: 255},  // #3DDB86
		{R: 203, G: 56, B: 255, A: 255},  // #CB38FF
		{R: 146, G: 204, B: 23, A: 255},  // #92CC17
	}

	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Orange = color.RGBA{R: 255, G: 165, B: 0, A: 255}

	// categoryColors is the fixed color of each category used where objects
	// are not colored individually
	categoryColors = map[category.Category]color.RGBA{
		category.People:      {R: 0, G: 194, B: 255, A: 255},
		category.Vehicles:    {R: 255, G: 112, B: 31, A: 255},
		category.Animals:     {R: 72, G: 249, B: 10, A: 255},
		category.Sports:      Yellow,
		category.Electronics: {R: 132, G: 56, B: 255, A: 255},
		category.Furniture:   {R: 210, G: 105, B: 30, A: 255},
		category.Food:        {R: 255, G: 149, B: 200, A: 255},
		category.Other:       {R: 192, G: 192, B: 192, A: 255},
	}

	// eventColors are the banner colors per event type
	eventColors = map[events.Type]color.RGBA{
		events.Goal:             Red,
		events.BallNearGoal:     Orange,
		events.FastMovement:     {R: 0, G: 194, B: 255, A: 255},
		events.PossessionChange: Green,
		events.Celebration:      Pink,
	}

// ObjectColor returns the color of a tracked object.  People are colored
// per ID so individual players can be followed, everything else uses the
// color of its category
func ObjectColor(cat category.Category, id int) color.RGBA {

	if cat == category.People {
		return classColors[id%len(classColors)]
	}

	if clr, ok := categoryColors[cat]; ok {
		return clr
	}

	return White
}

// EventColor returns the banner color of an event type
func EventColor(t events.Type) color.RGBA {

	if clr, ok := eventColors[t]; ok {
		return clr
	}

	return White
}
