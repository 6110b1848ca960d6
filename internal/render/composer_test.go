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
	"testing"
	"time"

	"github.com/couchcryptid/metar-signage/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xdraw "golang.org/x/image/draw"
)

var (
	testNow = time.Date(2026, time.October, 17, 18, 0, 0, 0, time.UTC)

	black = color.RGBA{A: 0xFF}
	green = color.RGBA{G: 0xFF, A: 0xFF}
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	blue  = color.RGBA{B: 0xFF, A: 0xFF}
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, xdraw.Src)
	return img
}

func testAssets(t *testing.T) Assets {
	t.Helper()
	faces, err := LoadFaces("")
	require.NoError(t, err)
	return Assets{
		Background:   solid(CanvasWidth, CanvasHeight, black),
		Runway:       solid(RunwayWidth, RunwayWidth, green),
		Arrow:        solid(ArrowWidth, 30, red),
		ArrowReverse: solid(ArrowWidth, 30, blue),
		Faces:        faces,
	}
}

func windReport(dir int, speed float64) domain.Report {
	return domain.Report{
		Station:          "KLOU",
		ObservedAt:       testNow.Add(-10 * time.Minute),
		RawCode:          "METAR KLOU 171750Z 24008KT 10SM CLR 18/07 A3012",
		WindDirectionDeg: domain.Ptr(dir),
		WindSpeedKt:      domain.Ptr(speed),
		VisibilityMiles:  domain.Ptr(10.0),
	}
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestPlaceArrow(t *testing.T) {
	const cx, cy = 1400.0, 650.0

	tests := []struct {
		name    string
		dir     int
		reverse bool
		x, y    float64
	}{
		{"north", 0, false, 1400, 320},
		{"east", 90, true, 1730, 650},
		{"south", 180, false, 1400, 980},
		{"west", 270, false, 1070, 650},
		{"southeast", 135, true, 1400 + 233, 650 + 233},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := PlaceArrow(windReport(tt.dir, 8), cx, cy)
			require.True(t, ok)
			assert.Equal(t, tt.reverse, p.Reverse)
			assert.InDelta(t, -(90 + float64(tt.dir)), p.RotationDeg, 1e-9)
			assert.InDelta(t, tt.x, p.CenterX, 1e-9)
			assert.InDelta(t, tt.y, p.CenterY, 1e-9)
		})
	}
}

func TestPlaceArrow_NoArrow(t *testing.T) {
	calm := windReport(90, 0)
	_, ok := PlaceArrow(calm, 0, 0)
	assert.False(t, ok, "calm wind")

	variable := windReport(90, 5)
	variable.WindDirectionDeg = nil
	_, ok = PlaceArrow(variable, 0, 0)
	assert.False(t, ok, "variable wind")

	noSpeed := windReport(90, 5)
	noSpeed.WindSpeedKt = nil
	_, ok = PlaceArrow(noSpeed, 0, 0)
	assert.False(t, ok, "missing speed")
}

func TestLayoutText(t *testing.T) {
	lines := layoutText("METAR KLOU 171750Z 24008KT", []string{"Flight condition: VFR", "Wind: calm"})

	require.Len(t, lines, 3)
	assert.Equal(t, textLine{Text: "METAR KLOU 171750Z 24008KT", Y: 100}, lines[0])
	assert.Equal(t, textLine{Text: "Flight condition: VFR", Y: 200}, lines[1])
	assert.Equal(t, textLine{Text: "Wind: calm", Y: 257}, lines[2])
}

func TestLayoutText_WrapsRawCode(t *testing.T) {
	raw := "METAR KLOU 021753Z 06008G22KT 10SM +RA -TSRA FZFG FZHZ FZBR FEW123 OVC456 02/M03 A3029 RMK AO2 SLP261"
	lines := layoutText(raw, nil)

	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l.Text), RawCodeColumns)
	}
	assert.Equal(t, raw, strings.Join(textOf(lines), " "))
}

func TestLayoutText_TruncatesSummary(t *testing.T) {
	summary := make([]string, 15)
	for i := range summary {
		summary[i] = fmt.Sprintf("line %d", i+1)
	}

	lines := layoutText("RAW", summary)

	require.Len(t, lines, 1+MaxSummaryLines)
	assert.Equal(t, "line 11", lines[MaxSummaryLines-1].Text)
	assert.Equal(t, domain.Ellipsis, lines[MaxSummaryLines].Text)
}

func textOf(lines []textLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestComposer_Render_ArrowGlyphSelection(t *testing.T) {
	c := NewComposer(testAssets(t), time.UTC)

	east, err := c.Render(windReport(90, 8), testNow)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, CanvasWidth, CanvasHeight), east.Bounds())
	assert.Equal(t, blue, rgbaAt(east, 1730, 650), "easterly wind uses the reverse glyph")
	assert.Equal(t, green, rgbaAt(east, 1400, 650), "runway diagram")

	west, err := c.Render(windReport(270, 8), testNow)
	require.NoError(t, err)
	assert.Equal(t, red, rgbaAt(west, 1070, 650), "westerly wind uses the normal glyph")
	assert.Equal(t, black, rgbaAt(west, 1730, 650))
}

func TestComposer_Render_NoArrowWhenCalm(t *testing.T) {
	c := NewComposer(testAssets(t), time.UTC)

	img, err := c.Render(windReport(90, 0), testNow)
	require.NoError(t, err)
	assert.Equal(t, black, rgbaAt(img, 1730, 650))
}

func TestComposer_Render_AllOptionalFieldsMissing(t *testing.T) {
	c := NewComposer(testAssets(t), time.UTC)

	img, err := c.Render(domain.Report{RawCode: "METAR KLOU"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, CanvasWidth, img.Bounds().Dx())
}

func TestComposer_Render_MissingAssets(t *testing.T) {
	assets := testAssets(t)
	assets.Runway = nil
	assets.ArrowReverse = nil

	_, err := NewComposer(assets, time.UTC).Render(windReport(90, 8), testNow)
	require.ErrorIs(t, err, ErrMissingAsset)
	assert.Contains(t, err.Error(), "runway")
	assert.Contains(t, err.Error(), "reverse arrow")
}

func TestComposer_RenderError_NoAssets(t *testing.T) {
	c := NewComposer(Assets{}, time.UTC)

	img := c.RenderError("decode metar: unexpected group \"XXXX\"\n\tmain.go:12", testNow)

	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, CanvasWidth, CanvasHeight), img.Bounds())
}

func TestComposer_RenderError_LongTrace(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&b, "frame %d: github.com/couchcryptid/metar-signage/internal/pipeline.(*Pipeline).Run\n", i)
	}

	img := NewComposer(testAssets(t), time.UTC).RenderError(b.String(), testNow)
	assert.Equal(t, CanvasHeight, img.Bounds().Dy())
}

func TestTraceLines(t *testing.T) {
	lines := traceLines("first\n\tsecond\n")
	assert.Equal(t, []string{"first", "    second"}, lines)
}

func TestEncodeAndWrite(t *testing.T) {
	data, err := EncodePNG(solid(10, 5, red))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "img_out", "latest_metar.png")
	require.NoError(t, WriteFile(path, data))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(onDisk))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 5), decoded.Bounds())
}

func TestLoadAssets_MissingDirectory(t *testing.T) {
	assets, err := LoadAssets(filepath.Join(t.TempDir(), "nope"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), BackgroundFile)
	assert.Nil(t, assets.Background)
	assert.NotNil(t, assets.Faces.Text, "bundled fonts still load")
}

func TestLoadAssets_FromDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{BackgroundFile, RunwayFile, ArrowFile, ArrowReverseFile} {
		data, err := EncodePNG(solid(20, 20, green))
		require.NoError(t, err)
		require.NoError(t, WriteFile(filepath.Join(dir, name), data))
	}

	assets, err := LoadAssets(dir, "")
	require.NoError(t, err)
	assert.NotNil(t, assets.Background)
	assert.NotNil(t, assets.ArrowReverse)
}
