package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	jsonOutput := flag.Bool("json", false, "Output the computed timeline as JSON")
	printTimeline := flag.Bool("timeline", false, "Print the beat timeline with per-part beat times")
	stepSpeed := flag.String("steps", "", "Print effect step durations (ms) at the given speed, e.g. 1, 1/2, 2")
	exportClick := flag.String("export-click", "", "Write a MIDI click track to the given path")
	renderPNG := flag.String("render", "", "Render the timeline strip to the given PNG path")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <show.yaml>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	filename := flag.Arg(0)

	show, err := OpenShowFile(filename)
	if err != nil {
		log.Printf("Error loading show: %v\n", err)
		os.Exit(1)
	}

	song := show.Structure()

	if *exportClick != "" {
		file, err := os.Create(*exportClick)
		if err != nil {
			log.Printf("Error creating %s: %v\n", *exportClick, err)
			os.Exit(1)
		}
		defer file.Close()

		if err := WriteClickTrack(song, file); err != nil {
			log.Printf("Error exporting click track: %v\n", err)
			os.Exit(1)
		}
		log.Printf("Wrote click track to %s", *exportClick)
	}

	if *renderPNG != "" {
		if err := RenderTimeline(song, *renderPNG); err != nil {
			log.Printf("Error rendering timeline: %v\n", err)
			os.Exit(1)
		}
		log.Printf("Rendered timeline to %s", *renderPNG)
	}

	switch {
	case *jsonOutput:
		printShowJSON(show, song)
	case *stepSpeed != "":
		printStepTimings(song, *stepSpeed)
	case *printTimeline:
		fmt.Printf("Timeline for: %s\n", filename)
		fmt.Print(song.String())
	case *exportClick == "" && *renderPNG == "":
		printShowSummary(show, song, filename)
	}
}

func printShowSummary(show *ShowFile, song *SongStructure, filename string) {
	fmt.Printf("Show File: %s\n", filename)
	if show.Title != "" {
		fmt.Printf("Title: %s\n", show.Title)
	}
	if show.Audio != "" {
		fmt.Printf("Audio: %s\n", show.Audio)
	}
	fmt.Printf("Parts: %d\n", len(song.Parts))
	fmt.Printf("Total duration: %.3fs\n", song.TotalDuration())
	fmt.Println()

	for i, part := range song.Parts {
		fmt.Printf("Part %d: %s\n", i+1, part.Name)
		fmt.Printf("  Signature: %s\n", part.Signature)
		fmt.Printf("  BPM: %.1f (%s)\n", part.BPM, part.Transition)
		fmt.Printf("  Bars: %d\n", part.NumBars)
		fmt.Printf("  Span: %.3fs - %.3fs\n", part.StartTime, part.End())
	}
}

// printStepTimings prints the per-step durations effect generators
// consume, converted to the milliseconds used at the emission boundary.
// The first part ramps from nothing, so it always steps at its own BPM.
func printStepTimings(song *SongStructure, speed string) {
	prevBPM := 0.0
	for i, part := range song.Parts {
		startBPM := prevBPM
		transition := part.Transition
		if prevBPM <= 0 {
			startBPM = part.BPM
			transition = TransitionInstant
		}

		durations, count := StepTimings(part.Signature, startBPM, part.BPM, part.NumBars, speed, transition)
		fmt.Printf("Part %d: %s, %d steps at speed %s\n", i+1, part.Name, count, speed)
		for step, ms := range toMilliseconds(durations) {
			fmt.Printf("  step %d: %.3fms\n", step+1, ms)
		}

		prevBPM = part.BPM
	}
}

func printShowJSON(show *ShowFile, song *SongStructure) {
	output := map[string]interface{}{
		"title":         show.Title,
		"audio":         show.Audio,
		"totalDuration": song.TotalDuration(),
		"parts":         song.Parts,
	}
	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		log.Printf("Error marshaling to JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(jsonData))
}
