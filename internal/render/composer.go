package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/metar-signage/internal/domain"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	xdraw "golang.org/x/image/draw"
)

const (
	textColor       = "#FFFFFF"
	fallbackColor   = "#1B1B1B"
	errorBanner     = "METAR image generation failed"
	errorTimeLayout = "2006-01-02 15:04:05 MST"
)

// Composer draws the status image. It performs no network I/O; every
// resource comes in through Assets.
type Composer struct {
	assets Assets
	loc    *time.Location
}

// NewComposer creates a Composer. loc is the zone for local times; nil means
// time.Local.
func NewComposer(assets Assets, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.Local
	}
	return &Composer{assets: assets, loc: loc}
}

// Render draws the normal layout for r: background, runway diagram, wind
// arrow, the wrapped raw code and the decoded summary. Panics from drawing
// are returned as errors carrying a stack trace.
func (c *Composer) Render(r domain.Report, now time.Time) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, errors.Errorf("render panic: %v", p)
		}
	}()

	if err := c.checkAssets(); err != nil {
		return nil, err
	}

	dc := gg.NewContext(CanvasWidth, CanvasHeight)
	dc.DrawImage(scaleTo(c.assets.Background, CanvasWidth, CanvasHeight), 0, 0)

	runway := scaleToWidth(c.assets.Runway, RunwayWidth)
	dc.DrawImage(runway, RunwayX, RunwayY)

	rb := runway.Bounds()
	centerX := float64(RunwayX + rb.Dx()/2)
	centerY := float64(RunwayY + rb.Dy()/2)
	if p, ok := PlaceArrow(r, centerX, centerY); ok {
		glyph := c.assets.Arrow
		if p.Reverse {
			glyph = c.assets.ArrowReverse
		}
		drawArrow(dc, scaleToWidth(glyph, ArrowWidth), p)
	}

	summary := domain.ComposeSummary(r, now, c.loc)
	dc.SetFontFace(c.assets.Faces.Text)
	dc.SetHexColor(textColor)
	for _, line := range layoutText(r.RawCode, summary) {
		dc.DrawStringAnchored(line.Text, Margin, line.Y, 0, 1)
	}

	return dc.Image(), nil
}

// drawArrow rotates the glyph about its own centre and places that centre at
// the computed point. gg rotates clockwise for positive angles on a y-down
// canvas, so the counter-clockwise rotation is negated.
func drawArrow(dc *gg.Context, glyph image.Image, p ArrowPlacement) {
	dc.Push()
	defer dc.Pop()
	dc.RotateAbout(gg.Radians(-p.RotationDeg), p.CenterX, p.CenterY)
	dc.DrawImageAnchored(glyph, int(p.CenterX), int(p.CenterY), 0.5, 0.5)
}

func (c *Composer) checkAssets() error {
	var missing []string
	if c.assets.Background == nil {
		missing = append(missing, "background")
	}
	if c.assets.Runway == nil {
		missing = append(missing, "runway")
	}
	if c.assets.Arrow == nil {
		missing = append(missing, "arrow")
	}
	if c.assets.ArrowReverse == nil {
		missing = append(missing, "reverse arrow")
	}
	if c.assets.Faces.Text == nil {
		missing = append(missing, "text face")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingAsset, strings.Join(missing, ", "))
	}
	return nil
}

// RenderError draws the fallback layout: a two-line banner with the
// generation time followed by the failure trace. It ignores the report
// entirely and always returns a valid canvas, substituting a plain fill and a
// bitmap face for any missing asset.
func (c *Composer) RenderError(trace string, at time.Time) (img image.Image) {
	defer func() {
		if recover() != nil {
			img = blankCanvas()
		}
	}()

	dc := gg.NewContext(CanvasWidth, CanvasHeight)
	if c.assets.Background != nil {
		dc.DrawImage(scaleTo(c.assets.Background, CanvasWidth, CanvasHeight), 0, 0)
	} else {
		dc.SetHexColor(fallbackColor)
		dc.Clear()
	}
	dc.SetHexColor(textColor)

	y := float64(Margin)
	dc.SetFontFace(faceOrFallback(c.assets.Faces.Banner))
	for _, line := range []string{errorBanner, "Generated " + at.In(c.loc).Format(errorTimeLayout)} {
		dc.DrawStringAnchored(line, Margin, y, 0, 1)
		y += dc.FontHeight() * 1.2
	}
	y += dc.FontHeight() / 2

	dc.SetFontFace(faceOrFallback(c.assets.Faces.Trace))
	step := dc.FontHeight() * 1.3
	for _, line := range traceLines(trace) {
		if y+step > CanvasHeight {
			break
		}
		dc.DrawStringAnchored(line, Margin, y, 0, 1)
		y += step
	}

	return dc.Image()
}

// traceLines splits a trace into display lines, wrapping long ones. Tabs
// from Go stack traces are expanded so the bitmap fallback face can draw them.
func traceLines(trace string) []string {
	trace = strings.ReplaceAll(trace, "\t", "    ")
	var out []string
	for _, line := range strings.Split(strings.TrimRight(trace, "\n"), "\n") {
		out = append(out, wrap(line, TraceColumns)...)
	}
	return out
}

func faceOrFallback(f font.Face) font.Face {
	if f == nil {
		return basicfont.Face7x13
	}
	return f
}

func blankCanvas() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	xdraw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 0x1B, G: 0x1B, B: 0x1B, A: 0xFF}}, image.Point{}, xdraw.Src)
	return img
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile stores the encoded image at path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}
