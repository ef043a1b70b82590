package main

import (
	"fmt"
	"strconv"

	"github.com/fogleman/gg"
)

const (
	stripWidth  = 1600
	stripHeight = 160
	rulerHeight = 24
	labelMargin = 6
)

// partColor parses an authored "#rrggbb" color into RGB components in
// [0,1]. A bad color falls back to a neutral grey; like signatures, colors
// are hand-edited content and must not abort a render.
func partColor(c string) (r, g, b float64) {
	if len(c) != 7 || c[0] != '#' {
		return 0.45, 0.45, 0.5
	}
	rv, err1 := strconv.ParseUint(c[1:3], 16, 8)
	gv, err2 := strconv.ParseUint(c[3:5], 16, 8)
	bv, err3 := strconv.ParseUint(c[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0.45, 0.45, 0.5
	}
	return float64(rv) / 255.0, float64(gv) / 255.0, float64(bv) / 255.0
}

// RenderTimeline draws the computed timeline as a PNG strip: a ruler band
// with the beat grid (heavier lines on bar boundaries) above one colored
// block per part with its name. This is the same projection the
// interactive timeline would draw, rendered offline.
func RenderTimeline(song *SongStructure, outPath string) error {
	total := song.TotalDuration()
	if total <= 0 {
		return fmt.Errorf("no timeline to render")
	}

	dc := gg.NewContext(stripWidth, stripHeight)
	dc.SetRGB(0.10, 0.10, 0.12)
	dc.Clear()

	scale := float64(stripWidth) / total

	for _, part := range song.Parts {
		x := part.StartTime * scale
		w := part.Duration * scale

		r, g, b := partColor(part.Color)
		dc.DrawRectangle(x, rulerHeight, w, stripHeight-rulerHeight)
		dc.SetRGB(r, g, b)
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1)
		dc.Stroke()

		dc.SetRGB(1, 1, 1)
		dc.DrawString(part.Name, x+labelMargin, stripHeight-labelMargin)
	}

	for _, mark := range song.BeatTimesInRange(0, total) {
		x := mark.Time * scale
		if mark.Bar {
			dc.SetRGBA(1, 1, 1, 0.9)
			dc.SetLineWidth(2)
		} else {
			dc.SetRGBA(1, 1, 1, 0.35)
			dc.SetLineWidth(1)
		}
		dc.DrawLine(x, 0, x, rulerHeight)
		dc.Stroke()
	}

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("error writing PNG: %w", err)
	}
	return nil
}
