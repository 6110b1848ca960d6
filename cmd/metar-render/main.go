// Command metar-render draws the status image for a METAR string without
// touching the network, for checking layout changes.
//
// Usage:
//
//	go run ./cmd/metar-render \
//	  -metar "KLOU 171753Z 24008KT 10SM CLR 18/07 A3012" \
//	  -assets img_assets \
//	  -out img_out/preview.png
package main

import (
	"flag"
	"log"
	"time"

	"github.com/couchcryptid/metar-signage/internal/adapter/metar"
	"github.com/couchcryptid/metar-signage/internal/domain"
	"github.com/couchcryptid/metar-signage/internal/render"
)

func main() {
	code := flag.String("metar", "", "raw METAR text to render")
	assetsDir := flag.String("assets", "img_assets", "directory holding the template images")
	fontPath := flag.String("font", "", "TrueType font for the report text (default: Go Bold)")
	out := flag.String("out", "img_out/preview.png", "output PNG path")
	tz := flag.String("tz", "America/Kentucky/Louisville", "zone for the local time line")
	at := flag.String("now", "", "render time in RFC 3339 (default: current time)")
	flag.Parse()

	if *code == "" {
		log.Fatal("-metar is required")
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatalf("load timezone: %v", err)
	}
	now := time.Now().UTC()
	if *at != "" {
		if now, err = time.Parse(time.RFC3339, *at); err != nil {
			log.Fatalf("parse -now: %v", err)
		}
	}

	assets, err := render.LoadAssets(*assetsDir, *fontPath)
	if err != nil {
		log.Printf("warning: %v", err)
	}
	composer := render.NewComposer(assets, loc)

	report, err := metar.Parse(*code, now)
	var data []byte
	if err == nil {
		for _, line := range domain.ComposeSummary(report, now, loc) {
			log.Print(line)
		}
		img, renderErr := composer.Render(report, now)
		if renderErr != nil {
			log.Printf("render failed, drawing error image: %v", renderErr)
			img = composer.RenderError(renderErr.Error(), now)
		}
		data, err = render.EncodePNG(img)
	} else {
		log.Printf("decode failed, drawing error image: %v", err)
		data, err = render.EncodePNG(composer.RenderError(err.Error(), now))
	}
	if err != nil {
		log.Fatal(err)
	}
	if err := render.WriteFile(*out, data); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%d bytes)", *out, len(data))
}
