package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Alignment of a text label relative to the box it annotates
type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to the bounding box
	Alignment Alignment
}

// DefaultFont returns default font settings for object labels
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
		Alignment: Left,
	}
}

// BannerFont returns the larger font used for the event banner and stats
// panel
func BannerFont() Font {
	f := DefaultFont()
	f.Scale = 0.7
	f.Thickness = 2
	f.TopPad = 6
	f.BottomPad = 8
	return f
}

// textLabel is a filled background box with text drawn on top
type textLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// labelAbove calculates a label sitting on top of the box edge from left to
// right at height top, aligned according to the font
func (f Font) labelAbove(text string, left, right, top, lineThickness int,
	clr color.RGBA) textLabel {

	textSize := gocv.GetTextSize(text, f.Face, f.Scale, f.Thickness)

	var centerX int

	switch f.Alignment {
	case Center:
		centerX = (left + right) / 2

	case Right:
		centerX = right - (textSize.X / 2) - f.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = left + (textSize.X / 2) + f.LeftPad - (lineThickness / 2)
	}

	return textLabel{
		rect: image.Rect(centerX-textSize.X/2-f.LeftPad,
			top-textSize.Y-f.TopPad-f.BottomPad,
			centerX+textSize.X/2+f.RightPad, top),
		clr:     clr,
		text:    text,
		textPos: image.Pt(centerX-textSize.X/2, top-f.BottomPad),
	}
}

// labelAt calculates a label whose top left corner is at pt
func (f Font) labelAt(text string, pt image.Point, clr color.RGBA) textLabel {

	textSize := gocv.GetTextSize(text, f.Face, f.Scale, f.Thickness)
	height := textSize.Y + f.TopPad + f.BottomPad

	return textLabel{
		rect: image.Rect(pt.X, pt.Y,
			pt.X+textSize.X+f.LeftPad+f.RightPad, pt.Y+height),
		clr:     clr,
		text:    text,
		textPos: image.Pt(pt.X+f.LeftPad, pt.Y+height-f.BottomPad),
	}
}

// drawLabels draws the precalculated labels so they are the top most layer
// on the image
func (f Font) drawLabels(img *gocv.Mat, labels []textLabel) {

	for _, l := range labels {
		gocv.Rectangle(img, l.rect, l.clr, -1)

		gocv.PutTextWithParams(img, l.text, l.textPos,
			f.Face, f.Scale, f.Color, f.Thickness,
			f.LineType, false)
	}
}
