package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ShowFile is the YAML authoring format: show metadata plus the ordered
// part list the timeline is computed from.
type ShowFile struct {
	Title      string      `yaml:"title" json:"title,omitempty"`
	Audio      string      `yaml:"audio" json:"audio,omitempty"`
	DefaultBPM float64     `yaml:"default_bpm" json:"defaultBPM,omitempty"`
	Parts      []*ShowPart `yaml:"parts" json:"parts"`
}

// OpenShowFile reads and validates a YAML show file.
func OpenShowFile(filename string) (*ShowFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening show file: %w", err)
	}

	show, err := ParseShowFile(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing show file %s: %w", filename, err)
	}

	return show, nil
}

// ParseShowFile parses show YAML. Authored content is handled leniently: a
// missing name or signature gets a default and an unknown transition is
// demoted to instant. Non-positive BPM and negative bar counts are
// configuration bugs rather than sloppy authoring; they fail hard here so
// they cannot poison every downstream duration.
func ParseShowFile(data []byte) (*ShowFile, error) {
	var show ShowFile
	if err := yaml.Unmarshal(data, &show); err != nil {
		return nil, err
	}

	for i, part := range show.Parts {
		if part == nil {
			return nil, fmt.Errorf("part %d is empty", i)
		}
		if part.Name == "" {
			part.Name = fmt.Sprintf("Part %d", i+1)
		}
		if part.Signature == "" {
			part.Signature = "4/4"
		}
		if part.BPM <= 0 {
			return nil, fmt.Errorf("part %d (%s): bpm must be positive, got %g", i, part.Name, part.BPM)
		}
		if part.NumBars < 0 {
			return nil, fmt.Errorf("part %d (%s): bars must not be negative, got %d", i, part.Name, part.NumBars)
		}
		if part.Transition != TransitionInstant && part.Transition != TransitionGradual {
			part.Transition = TransitionInstant
		}
	}

	return &show, nil
}

// Structure computes the timeline for the show's parts.
func (sf *ShowFile) Structure() *SongStructure {
	song := NewSongStructure()
	if sf.DefaultBPM > 0 {
		song.DefaultBPM = sf.DefaultBPM
	}
	song.LoadParts(sf.Parts)
	return song
}
