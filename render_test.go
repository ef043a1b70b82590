package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestPartColor(t *testing.T) {
	r, g, b := partColor("#ff0000")
	if r != 1.0 || g != 0.0 || b != 0.0 {
		t.Errorf("Expected pure red, got %g %g %g", r, g, b)
	}

	// Bad colors fall back to grey rather than failing the render.
	for _, bad := range []string{"", "red", "#zzzzzz", "#fff"} {
		r, g, b := partColor(bad)
		if r != 0.45 || g != 0.45 || b != 0.5 {
			t.Errorf("partColor(%q): expected grey fallback, got %g %g %g", bad, r, g, b)
		}
	}
}

func TestRenderTimelineEmpty(t *testing.T) {
	err := RenderTimeline(NewSongStructure(), filepath.Join(t.TempDir(), "out.png"))
	if err == nil {
		t.Fatal("Expected error for empty timeline, render succeeded")
	}
}

func TestRenderTimelineWritesPNG(t *testing.T) {
	parts := []*ShowPart{
		{Name: "Intro", Color: "#3366cc", Signature: "4/4", BPM: 100, NumBars: 4, Transition: TransitionInstant},
		{Name: "Build", Color: "not-a-color", Signature: "4/4", BPM: 140, NumBars: 4, Transition: TransitionGradual},
	}
	song := NewSongStructure()
	song.LoadParts(parts)

	outPath := filepath.Join(t.TempDir(), "timeline.png")
	if err := RenderTimeline(song, outPath); err != nil {
		t.Fatalf("Failed to render timeline: %v", err)
	}

	file, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("Rendered file missing: %v", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Output is not a valid PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != stripWidth || bounds.Dy() != stripHeight {
		t.Errorf("Expected %dx%d image, got %dx%d", stripWidth, stripHeight, bounds.Dx(), bounds.Dy())
	}
}
