package main

import (
	"fmt"
	"math"
	"strings"
)

// ShowPart is one named section of a show: a time signature, a target BPM,
// a bar count and a transition describing how the tempo moves from the
// previous section to this one. StartTime and Duration are computed fields
// filled in by SongStructure.LoadParts.
type ShowPart struct {
	Name       string  `yaml:"name" json:"name"`
	Color      string  `yaml:"color" json:"color,omitempty"`
	Signature  string  `yaml:"signature" json:"signature"`
	BPM        float64 `yaml:"bpm" json:"bpm"`
	NumBars    int     `yaml:"bars" json:"bars"`
	Transition string  `yaml:"transition" json:"transition"`

	StartTime float64 `yaml:"-" json:"startTime"`
	Duration  float64 `yaml:"-" json:"duration"`
}

// End returns the absolute time this part finishes.
func (p *ShowPart) End() float64 {
	return p.StartTime + p.Duration
}

// SongStructure lays an ordered part list onto an absolute timeline and
// answers time queries against it. It borrows the caller's parts: the
// slice container is copied but the ShowPart objects are shared, and
// LoadParts writes StartTime and Duration back onto them so the authoring
// layer sees the computed values. Not safe for concurrent use; callers
// drive it from a single event loop.
type SongStructure struct {
	Parts      []*ShowPart
	DefaultBPM float64
}

// NewSongStructure returns an empty structure with the 120 BPM fallback
// used by queries when no parts are loaded.
func NewSongStructure() *SongStructure {
	return &SongStructure{DefaultBPM: 120.0}
}

// LoadParts replaces the part list and recomputes every StartTime and
// Duration from scratch. Call it again after any edit to a part's BPM,
// bars, signature, transition or position; there is no incremental mode.
func (s *SongStructure) LoadParts(parts []*ShowPart) {
	s.Parts = make([]*ShowPart, len(parts))
	copy(s.Parts, parts)

	currentTime := 0.0
	prevBPM := 0.0 // 0 means no preceding part
	for _, part := range s.Parts {
		part.StartTime = currentTime
		part.Duration = partDuration(part, prevBPM)
		currentTime += part.Duration
		prevBPM = part.BPM
	}
}

// TotalDuration returns the end of the last part, or 0 with no parts.
func (s *SongStructure) TotalDuration() float64 {
	if len(s.Parts) == 0 {
		return 0.0
	}
	return s.Parts[len(s.Parts)-1].End()
}

// partIndexAt returns the index of the part containing t. Times at or
// beyond the end of the show clamp to the last part, so playhead queries
// past the end of audio still land in the final section. Returns -1 when
// t precedes the timeline or there are no parts.
func (s *SongStructure) partIndexAt(t float64) int {
	if len(s.Parts) == 0 || t < 0 {
		return -1
	}
	for i, part := range s.Parts {
		if t >= part.StartTime && t < part.End() {
			return i
		}
	}
	return len(s.Parts) - 1
}

// PartAtTime returns the part containing t, the last part for times past
// the end, or nil for times before the timeline or an empty part list.
func (s *SongStructure) PartAtTime(t float64) *ShowPart {
	i := s.partIndexAt(t)
	if i < 0 {
		return nil
	}
	return s.Parts[i]
}

// BPMAtTime returns the effective tempo at t, or DefaultBPM when t falls
// outside the timeline. Inside a gradual part the tempo is interpolated
// with the same curved progress used for durations, but as a continuous
// function of elapsed time rather than per bar. The two are deliberately
// not exact inverses of each other: durations integrate the ramp per bar
// while this query treats it as continuous. Existing shows were authored
// against that approximation, so it stays.
func (s *SongStructure) BPMAtTime(t float64) float64 {
	i := s.partIndexAt(t)
	if i < 0 {
		return s.DefaultBPM
	}
	part := s.Parts[i]
	if part.Transition != TransitionGradual || i == 0 || part.Duration <= 0 {
		return part.BPM
	}
	prevBPM := s.Parts[i-1].BPM
	progress := (t - part.StartTime) / part.Duration
	progress = math.Min(math.Max(progress, 0.0), 1.0)
	return rampBPM(prevBPM, part.BPM, progress)
}

// NearestBeatTime snaps t to the closest beat boundary. Negative times
// pass through unchanged; callers rely on that to detect "before the
// timeline". With no parts the snap uses a flat DefaultBPM grid. Inside a
// gradual part beats are not uniform, so t is returned unchanged. On an
// exact tie between the surrounding beats the earlier one wins.
func (s *SongStructure) NearestBeatTime(t float64) float64 {
	if t < 0 {
		return t
	}
	if len(s.Parts) == 0 {
		secondsPerBeat := 60.0 / s.DefaultBPM
		return math.Round(t/secondsPerBeat) * secondsPerBeat
	}
	part := s.PartAtTime(t)
	if part == nil {
		return 0.0
	}
	if part.Transition == TransitionGradual {
		return t
	}
	secondsPerBeat := 60.0 / part.BPM
	beat := math.Floor((t - part.StartTime) / secondsPerBeat)
	floorTime := part.StartTime + beat*secondsPerBeat
	ceilTime := floorTime + secondsPerBeat
	if t-floorTime <= ceilTime-t {
		return floorTime
	}
	return ceilTime
}

// BeatMark is one grid marker produced by BeatTimesInRange. Bar is true
// on bar boundaries (downbeats).
type BeatMark struct {
	Time float64
	Bar  bool
}

// BeatTimesInRange enumerates the beat grid between startTime and endTime
// for ruler drawing. Instant parts contribute every beat, tagged on bar
// boundaries. Gradual parts contribute bar boundaries only, placed with
// the same per-bar ramp the duration calculation uses: individual beats
// inside a tempo ramp are not uniform, bars are the atomic unit.
func (s *SongStructure) BeatTimesInRange(startTime, endTime float64) []BeatMark {
	var marks []BeatMark
	for i, part := range s.Parts {
		if part.End() < startTime || part.StartTime > endTime {
			continue
		}
		bpb := beatsPerBar(part.Signature)

		if part.Transition == TransitionGradual && i > 0 {
			prevBPM := s.Parts[i-1].BPM
			barTime := part.StartTime
			for bar := 0; bar < part.NumBars; bar++ {
				if barTime >= startTime && barTime <= endTime {
					marks = append(marks, BeatMark{Time: barTime, Bar: true})
				}
				bpm := rampBPM(prevBPM, part.BPM, float64(bar)/float64(part.NumBars))
				barTime += bpb * (60.0 / bpm)
			}
			continue
		}

		secondsPerBeat := 60.0 / part.BPM
		totalBeats := int(math.Round(float64(part.NumBars) * bpb))
		for beat := 0; beat <= totalBeats; beat++ {
			beatTime := part.StartTime + float64(beat)*secondsPerBeat
			if beatTime < startTime || beatTime > endTime {
				continue
			}
			marks = append(marks, BeatMark{
				Time: beatTime,
				Bar:  math.Mod(float64(beat), bpb) == 0,
			})
		}
	}
	return marks
}

// String renders the computed timeline with per-part beat times.
func (s *SongStructure) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Timeline: %d parts, %.3fs total\n", len(s.Parts), s.TotalDuration()))

	for i, part := range s.Parts {
		sb.WriteString(fmt.Sprintf("Part %d: %s, %s, %.1f BPM, %d bars, %s, %.3fs-%.3fs\n",
			i+1,
			part.Name,
			part.Signature,
			part.BPM,
			part.NumBars,
			part.Transition,
			part.StartTime,
			part.End(),
		))

		// Neighboring parts share boundary beats with this one; keep each
		// time once and drop anything belonging to the next part.
		beatIndex := 1
		lastTime := math.Inf(-1)
		for _, mark := range s.BeatTimesInRange(part.StartTime, part.End()) {
			if mark.Time >= part.End() || mark.Time-lastTime < 1e-9 {
				continue
			}
			lastTime = mark.Time
			label := "beat"
			if mark.Bar {
				label = "bar"
			}
			sb.WriteString(fmt.Sprintf("  * %s %d: %.6f\n", label, beatIndex, mark.Time))
			beatIndex++
		}
	}

	return sb.String()
}
