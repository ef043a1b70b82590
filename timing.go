package main

import (
	"math"
	"strconv"
	"strings"
)

// Transition values understood by the timing engine. Any other string on a
// part is treated as TransitionInstant.
const (
	TransitionInstant = "instant"
	TransitionGradual = "gradual"
)

// rampExponent shapes the BPM ramp inside gradual transitions. Slightly
// eased rather than linear, so the tempo moves faster toward the end of
// the section. Shared by every gradual computation so durations, tempo
// queries and exports all agree on the curve.
const rampExponent = 0.52

const defaultBeatsPerBar = 4.0

// parseSignature splits a time signature string like "4/4" into its
// numerator and denominator. ok is false for anything malformed.
func parseSignature(signature string) (num, denom int, ok bool) {
	numStr, denomStr, found := strings.Cut(signature, "/")
	if !found {
		return 0, 0, false
	}
	num, err := strconv.Atoi(strings.TrimSpace(numStr))
	if err != nil || num <= 0 {
		return 0, 0, false
	}
	denom, err = strconv.Atoi(strings.TrimSpace(denomStr))
	if err != nil || denom <= 0 {
		return 0, 0, false
	}
	return num, denom, true
}

// beatsPerBar converts a time signature into quarter-note beats per bar:
// "4/4" -> 4, "3/4" -> 3, "6/8" -> 3, "3/8" -> 1.5. Every signature is
// normalized to quarter-note beats so the rest of the engine can count in
// a single unit. Malformed signatures fall back to 4/4 instead of
// erroring; show files get edited by hand and a bad signature must not
// abort a render.
func beatsPerBar(signature string) float64 {
	num, denom, ok := parseSignature(signature)
	if !ok {
		return defaultBeatsPerBar
	}
	return float64(num) * 4.0 / float64(denom)
}

// instantDuration returns the length in seconds of numBars bars at a
// constant tempo. BPM must be positive; the show file loader rejects
// non-positive values before they can reach here.
func instantDuration(signature string, bpm float64, numBars int) float64 {
	totalBeats := float64(numBars) * beatsPerBar(signature)
	return totalBeats * (60.0 / bpm)
}

// gradualDuration returns the length in seconds of a section whose tempo
// ramps from startBPM to endBPM. The ramp is discrete per bar: tempo is
// constant within a bar and only changes at bar boundaries, with each
// bar's BPM taken from the curved progress function. Zero bars yields 0.
func gradualDuration(signature string, startBPM, endBPM float64, numBars int) float64 {
	if numBars == 0 {
		return 0.0
	}
	bpb := beatsPerBar(signature)
	total := 0.0
	for bar := 0; bar < numBars; bar++ {
		bpm := rampBPM(startBPM, endBPM, float64(bar)/float64(numBars))
		total += bpb * (60.0 / bpm)
	}
	return total
}

// rampBPM interpolates between two tempos using the shared curved
// progress. progress 0 yields startBPM exactly, progress 1 yields endBPM.
func rampBPM(startBPM, endBPM, progress float64) float64 {
	return startBPM + (endBPM-startBPM)*math.Pow(progress, rampExponent)
}

// partDuration returns the duration of a part in seconds. prevBPM is the
// BPM the previous part ended on, or 0 when there is no previous part.
// A first part is always instant regardless of its declared transition,
// since there is no prior tempo to ramp from. Unknown transition strings
// are instant as well.
func partDuration(part *ShowPart, prevBPM float64) float64 {
	if part.Transition == TransitionGradual && prevBPM > 0 {
		return gradualDuration(part.Signature, prevBPM, part.BPM, part.NumBars)
	}
	return instantDuration(part.Signature, part.BPM, part.NumBars)
}

// StartTimeOf returns the absolute start time of parts[index] by
// accumulating the durations of everything before it. Pure: it never
// touches the parts' computed fields, so callers can preview a layout
// without reloading a SongStructure.
func StartTimeOf(parts []*ShowPart, index int) float64 {
	start := 0.0
	prevBPM := 0.0
	for i := 0; i < index && i < len(parts); i++ {
		start += partDuration(parts[i], prevBPM)
		prevBPM = parts[i].BPM
	}
	return start
}

// parseSpeed converts an effect speed multiplier such as "1", "2", "1/2"
// or "1/4" into a float. Anything unparseable, and any non-positive
// result, defaults to 1.0.
func parseSpeed(speed string) float64 {
	speed = strings.TrimSpace(speed)
	if numStr, denomStr, found := strings.Cut(speed, "/"); found {
		num, err1 := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
		denom, err2 := strconv.ParseFloat(strings.TrimSpace(denomStr), 64)
		if err1 != nil || err2 != nil || num <= 0 || denom <= 0 {
			return 1.0
		}
		return num / denom
	}
	if v, err := strconv.ParseFloat(speed, 64); err == nil && v > 0 {
		return v
	}
	return 1.0
}

// StepTimings expands a section into per-step durations for effect
// generators. A step is one beat scaled by the speed multiplier. For
// gradual transitions the curved BPM ramp is applied per step index, so
// each step's duration reflects the interpolated tempo at that point;
// otherwise every step gets an equal share of the instant duration at
// endBPM. Durations are in seconds; emitters convert at the boundary with
// toMilliseconds. The returned count always matches len(durations) and is
// at least 1.
func StepTimings(signature string, startBPM, endBPM float64, numBars int, speed, transition string) ([]float64, int) {
	mult := parseSpeed(speed)
	totalSteps := int(math.Round(float64(numBars) * beatsPerBar(signature) * mult))
	if totalSteps < 1 {
		totalSteps = 1
	}

	durations := make([]float64, totalSteps)
	if transition == TransitionGradual {
		for i := 0; i < totalSteps; i++ {
			bpm := rampBPM(startBPM, endBPM, float64(i)/float64(totalSteps))
			durations[i] = 60.0 / (bpm * mult)
		}
	} else {
		each := instantDuration(signature, endBPM, numBars) / float64(totalSteps)
		for i := range durations {
			durations[i] = each
		}
	}
	return durations, totalSteps
}

// millisecondsPerSecond is the single conversion factor between the
// engine's internal seconds and the milliseconds step-based file formats
// expect. Applied only at emission boundaries.
const millisecondsPerSecond = 1000.0

// toMilliseconds converts a duration list from seconds to milliseconds.
func toMilliseconds(seconds []float64) []float64 {
	out := make([]float64, len(seconds))
	for i, s := range seconds {
		out[i] = s * millisecondsPerSecond
	}
	return out
}
