package render

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Asset filenames expected inside the assets directory.
const (
	BackgroundFile   = "metar_base.png"
	RunwayFile       = "runways.png"
	ArrowFile        = "black_arrow.png"
	ArrowReverseFile = "black_arrow_reverse.png"
)

// Font sizes in points at 72 DPI, so one point is one pixel.
const (
	TextFontSize   = 50
	BannerFontSize = 80
	TraceFontSize  = 24
)

// ErrMissingAsset is returned when normal rendering lacks a required image.
var ErrMissingAsset = errors.New("missing render asset")

// Assets holds every external resource the composer draws with. Any field may
// be nil; normal rendering then fails with ErrMissingAsset while error
// rendering falls back to built-in substitutes.
type Assets struct {
	Background   image.Image
	Runway       image.Image
	Arrow        image.Image // label reads upright for westerly winds
	ArrowReverse image.Image // label reads upright for easterly winds

	Faces Faces
}

// Faces are the text faces used by the composer.
type Faces struct {
	Text   font.Face
	Banner font.Face
	Trace  font.Face
}

// LoadAssets reads the template images from dir and builds the text faces
// from fontPath, or from the bundled Go fonts when fontPath is empty. It
// returns everything it managed to load together with a joined error for the
// rest, so callers can still render the error image from a partial set.
func LoadAssets(dir, fontPath string) (Assets, error) {
	var (
		a    Assets
		errs []error
	)

	load := func(name string) image.Image {
		img, err := gg.LoadImage(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", name, err))
			return nil
		}
		return img
	}
	a.Background = load(BackgroundFile)
	a.Runway = load(RunwayFile)
	a.Arrow = load(ArrowFile)
	a.ArrowReverse = load(ArrowReverseFile)

	faces, err := LoadFaces(fontPath)
	if err != nil {
		errs = append(errs, err)
	}
	a.Faces = faces

	return a, errors.Join(errs...)
}

// LoadFaces builds the three text faces. The body and banner use the bold
// face from fontPath (or Go Bold); the trace always uses Go Regular so long
// stack traces stay legible.
func LoadFaces(fontPath string) (Faces, error) {
	boldData := gobold.TTF
	if fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			return Faces{}, fmt.Errorf("read font: %w", err)
		}
		boldData = data
	}

	bold, err := opentype.Parse(boldData)
	if err != nil {
		return Faces{}, fmt.Errorf("parse font: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return Faces{}, fmt.Errorf("parse trace font: %w", err)
	}

	var f Faces
	if f.Text, err = newFace(bold, TextFontSize); err != nil {
		return Faces{}, err
	}
	if f.Banner, err = newFace(bold, BannerFontSize); err != nil {
		return Faces{}, err
	}
	if f.Trace, err = newFace(regular, TraceFontSize); err != nil {
		return Faces{}, err
	}
	return f, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create %.0fpt face: %w", size, err)
	}
	return face, nil
}
