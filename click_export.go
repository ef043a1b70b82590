package main

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	clickTicksPerQuarter = 480

	downbeatKey  = 12 // C-1 marks downbeats
	beatKey      = 13 // C#-1 marks other beats
	beatChannel  = 0
	beatVelocity = 100

	// Short marker notes, well under a beat at 480 ticks per quarter.
	beatLengthTicks = 120
)

// timedMessage is a MIDI message positioned at an absolute tick.
type timedMessage struct {
	tick uint32
	msg  smf.Message
}

// buildTrack assembles a named SMF track from absolute-tick messages,
// converting to the relative deltas the format requires and terminating
// with End of Track.
func buildTrack(name string, events []timedMessage) smf.Track {
	track := smf.Track{}
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName(name))})

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})

	var lastTick uint32
	for _, ev := range events {
		track = append(track, smf.Event{Delta: ev.tick - lastTick, Message: ev.msg})
		lastTick = ev.tick
	}

	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}

// WriteClickTrack writes the song's tempo map and beat grid as a standard
// MIDI file. Track 0 is the conductor track: one time signature per part
// plus tempo events, with a tempo step at every bar boundary inside
// gradual parts so the ramp plays back bar-accurately. Track 1 is a BEAT
// track with one short note per beat, key 12 on downbeats and key 13
// elsewhere, so timeline extractors and DAWs can reconstruct the grid.
func WriteClickTrack(song *SongStructure, w io.Writer) error {
	if len(song.Parts) == 0 {
		return fmt.Errorf("no parts to export")
	}

	var conductor, beats []timedMessage

	partTick := 0.0
	prevBPM := 0.0
	for _, part := range song.Parts {
		bpb := beatsPerBar(part.Signature)
		num, denom, ok := parseSignature(part.Signature)
		if !ok {
			num, denom = 4, 4
		}

		startTick := uint32(math.Round(partTick))
		conductor = append(conductor, timedMessage{
			tick: startTick,
			msg:  smf.Message(smf.MetaTimeSig(uint8(num), uint8(denom), 24, 8)),
		})

		if part.Transition == TransitionGradual && prevBPM > 0 {
			for bar := 0; bar < part.NumBars; bar++ {
				barTick := uint32(math.Round(partTick + float64(bar)*bpb*clickTicksPerQuarter))
				bpm := rampBPM(prevBPM, part.BPM, float64(bar)/float64(part.NumBars))
				conductor = append(conductor, timedMessage{
					tick: barTick,
					msg:  smf.Message(smf.MetaTempo(bpm)),
				})
			}
		} else {
			conductor = append(conductor, timedMessage{
				tick: startTick,
				msg:  smf.Message(smf.MetaTempo(part.BPM)),
			})
		}

		totalBeats := int(math.Round(float64(part.NumBars) * bpb))
		for beat := 0; beat < totalBeats; beat++ {
			beatTick := uint32(math.Round(partTick + float64(beat)*clickTicksPerQuarter))
			key := uint8(beatKey)
			if math.Mod(float64(beat), bpb) == 0 {
				key = downbeatKey
			}
			beats = append(beats,
				timedMessage{tick: beatTick, msg: smf.Message(midi.NoteOn(beatChannel, key, beatVelocity))},
				timedMessage{tick: beatTick + beatLengthTicks, msg: smf.Message(midi.NoteOff(beatChannel, key))},
			)
		}

		partTick += float64(part.NumBars) * bpb * clickTicksPerQuarter
		prevBPM = part.BPM
	}

	out := smf.NewSMF1()
	out.TimeFormat = smf.MetricTicks(clickTicksPerQuarter)
	out.Add(buildTrack("Tempo", conductor))
	out.Add(buildTrack("BEAT", beats))

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}
