package main

import (
	"bytes"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"
)

func trackName(track smf.Track) string {
	for _, event := range track {
		var name string
		if event.Message.GetMetaTrackName(&name) {
			return name
		}
	}
	return ""
}

func TestWriteClickTrackEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteClickTrack(NewSongStructure(), &buf); err == nil {
		t.Fatal("Expected error for empty song, export succeeded")
	}
}

func TestWriteClickTrackRoundTrip(t *testing.T) {
	parts := []*ShowPart{
		{Name: "A", Signature: "4/4", BPM: 100, NumBars: 2, Transition: TransitionInstant},
		{Name: "B", Signature: "4/4", BPM: 140, NumBars: 2, Transition: TransitionGradual},
	}
	song := NewSongStructure()
	song.LoadParts(parts)

	var buf bytes.Buffer
	if err := WriteClickTrack(song, &buf); err != nil {
		t.Fatalf("Failed to export click track: %v", err)
	}

	readBack, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Exported file did not read back as SMF: %v", err)
	}

	if len(readBack.Tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(readBack.Tracks))
	}
	if got := trackName(readBack.Tracks[0]); got != "Tempo" {
		t.Errorf("Expected conductor track named 'Tempo', got '%s'", got)
	}
	if got := trackName(readBack.Tracks[1]); got != "BEAT" {
		t.Errorf("Expected beat track named 'BEAT', got '%s'", got)
	}
}

func TestClickTrackTempoMap(t *testing.T) {
	parts := []*ShowPart{
		{Name: "A", Signature: "4/4", BPM: 100, NumBars: 2, Transition: TransitionInstant},
		{Name: "B", Signature: "4/4", BPM: 140, NumBars: 2, Transition: TransitionGradual},
	}
	song := NewSongStructure()
	song.LoadParts(parts)

	var buf bytes.Buffer
	if err := WriteClickTrack(song, &buf); err != nil {
		t.Fatalf("Failed to export click track: %v", err)
	}
	readBack, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Failed to read back SMF: %v", err)
	}

	var tempos []float64
	var timeSigs int
	for _, event := range readBack.Tracks[0] {
		var bpm float64
		if event.Message.GetMetaTempo(&bpm) {
			tempos = append(tempos, bpm)
		}
		if event.Message.Type() == smf.MetaTimeSigMsg {
			timeSigs++
		}
	}

	// One tempo for the instant part, one per bar of the gradual part.
	if len(tempos) != 3 {
		t.Fatalf("Expected 3 tempo events, got %d", len(tempos))
	}
	// Tempo meta events round to microseconds per quarter, so compare
	// loosely.
	if tempos[0] < 99.5 || tempos[0] > 100.5 {
		t.Errorf("Expected first tempo near 100 BPM, got %g", tempos[0])
	}
	// The ramp's first bar holds the previous tempo (progress 0).
	if tempos[1] < 99.5 || tempos[1] > 100.5 {
		t.Errorf("Expected ramp to start near 100 BPM, got %g", tempos[1])
	}
	if tempos[2] <= tempos[1] || tempos[2] >= 140.0 {
		t.Errorf("Expected ramp bar between start and target tempo, got %g", tempos[2])
	}

	if timeSigs != 2 {
		t.Errorf("Expected one time signature per part, got %d", timeSigs)
	}
}

func TestClickTrackBeatNotes(t *testing.T) {
	parts := []*ShowPart{
		{Name: "A", Signature: "4/4", BPM: 100, NumBars: 2, Transition: TransitionInstant},
		{Name: "B", Signature: "4/4", BPM: 140, NumBars: 2, Transition: TransitionGradual},
	}
	song := NewSongStructure()
	song.LoadParts(parts)

	var buf bytes.Buffer
	if err := WriteClickTrack(song, &buf); err != nil {
		t.Fatalf("Failed to export click track: %v", err)
	}
	readBack, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Failed to read back SMF: %v", err)
	}

	var beats, downbeats int
	for _, event := range readBack.Tracks[1] {
		var ch, key, vel uint8
		if event.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
			switch key {
			case downbeatKey:
				downbeats++
				beats++
			case beatKey:
				beats++
			default:
				t.Errorf("Unexpected beat note key %d", key)
			}
		}
	}

	// 4 bars of 4/4 in total.
	if beats != 16 {
		t.Errorf("Expected 16 beat notes, got %d", beats)
	}
	if downbeats != 4 {
		t.Errorf("Expected 4 downbeats, got %d", downbeats)
	}
}
