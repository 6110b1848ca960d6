package render

import (
	"image"
	"math"
	"strings"

	"github.com/couchcryptid/metar-signage/internal/domain"
	"github.com/mitchellh/go-wordwrap"
	xdraw "golang.org/x/image/draw"
)

// Canvas and layout geometry, in pixels.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080

	RunwayX     = 1200
	RunwayY     = 450
	RunwayWidth = 400

	ArrowWidth  = 150
	ArrowOffset = 330 // distance from runway centre to arrow centre

	Margin      = 100
	LineSpacing = 7 // extra leading between summary lines

	RawCodeColumns = 60
	SummaryColumns = 60
	TraceColumns   = 110

	MaxSummaryLines = 12
)

// ArrowPlacement describes how the wind arrow is drawn.
type ArrowPlacement struct {
	Reverse     bool    // use the reverse glyph so its label stays upright
	RotationDeg float64 // counter-clockwise rotation applied to the glyph
	CenterX     float64
	CenterY     float64
}

// PlaceArrow positions the wind arrow around the runway diagram. It returns
// false when the wind direction is unknown or the wind is calm or missing,
// in which case no arrow is drawn. The glyph points east at rest, hence the
// extra 90° in the rotation.
func PlaceArrow(r domain.Report, runwayCenterX, runwayCenterY float64) (ArrowPlacement, bool) {
	if r.WindDirectionDeg == nil || r.WindSpeedKt == nil || *r.WindSpeedKt <= 0 {
		return ArrowPlacement{}, false
	}
	dir := *r.WindDirectionDeg
	theta := float64(dir) * math.Pi / 180

	return ArrowPlacement{
		Reverse:     dir > 0 && dir < 180,
		RotationDeg: -(90 + float64(dir)),
		CenterX:     runwayCenterX + math.Round(ArrowOffset*math.Sin(theta)),
		CenterY:     runwayCenterY - math.Round(ArrowOffset*math.Cos(theta)),
	}, true
}

// textLine is a single line of body text and the y of its top edge.
type textLine struct {
	Text string
	Y    float64
}

// layoutText places the wrapped raw code, a blank line, then the summary.
// The summary is capped at MaxSummaryLines before wrapping.
func layoutText(rawCode string, summary []string) []textLine {
	var out []textLine
	y := float64(Margin)

	for _, line := range wrap(rawCode, RawCodeColumns) {
		out = append(out, textLine{Text: line, Y: y})
		y += TextFontSize
	}
	y += TextFontSize

	for _, entry := range domain.TruncateLines(summary, MaxSummaryLines) {
		for _, line := range wrap(entry, SummaryColumns) {
			out = append(out, textLine{Text: line, Y: y})
			y += TextFontSize + LineSpacing
		}
	}
	return out
}

// wrap word-wraps s at the given column count. Words longer than the limit
// are kept whole on their own line.
func wrap(s string, columns uint) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(wordwrap.WrapString(s, columns), "\n")
}

// scaleToWidth resizes img to the given width keeping its aspect ratio.
func scaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() == width || b.Dx() == 0 {
		return img
	}
	height := int(float64(b.Dy()) * float64(width) / float64(b.Dx()))
	return scaleTo(img, width, height)
}

// scaleTo resizes img to exactly width×height.
func scaleTo(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
