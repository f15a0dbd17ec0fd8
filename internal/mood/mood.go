// Package mood defines the canonical mood taxonomy and normalizes raw
// classifier labels into it.
package mood

import (
	"fmt"
	"slices"
	"strings"
)

// Mood is a canonical emotional category, independent of any classifier's
// vocabulary.
type Mood string

// Canonical moods.
const (
	Happy    Mood = "Happy"
	Sad      Mood = "Sad"
	Anger    Mood = "Anger"
	Calm     Mood = "Calm"
	Love     Mood = "Love"
	Anxiety  Mood = "Anxiety"
	Powerful Mood = "Powerful"
	Neutral  Mood = "Neutral"
)

// Default is returned whenever a label cannot be mapped.
const Default = Neutral

var all = []Mood{Happy, Sad, Anger, Calm, Love, Anxiety, Powerful, Neutral}

// All returns every canonical mood in declaration order.
func All() []Mood {
	out := make([]Mood, len(all))
	copy(out, all)
	return out
}

// Valid reports whether m is one of the canonical moods.
func (m Mood) Valid() bool {
	return slices.Contains(all, m)
}

func (m Mood) String() string {
	return string(m)
}

// Modality identifies which classifier produced a raw label.
type Modality string

const (
	// Text labels come from the text sentiment model.
	Text Modality = "text"
	// Image labels come from the facial-expression detector.
	Image Modality = "image"
)

// ParseModality converts a string such as "text" or "IMAGE" into a Modality.
func ParseModality(s string) (Modality, error) {
	switch Modality(strings.ToLower(strings.TrimSpace(s))) {
	case Text:
		return Text, nil
	case Image:
		return Image, nil
	}
	return "", fmt.Errorf("unknown modality %q", s)
}

// Label vocabularies are keyed lower-case; lookups fold case first.
var (
	textMoods = map[string]Mood{
		"sadness": Sad,
		"joy":     Happy,
		"love":    Love,
		"anger":   Anger,
		"fear":    Anxiety,
	}

	imageMoods = map[string]Mood{
		"happy":    Happy,
		"sad":      Sad,
		"angry":    Anger,
		"surprise": Powerful,
		"disgust":  Anger,
		"fear":     Anxiety,
		"neutral":  Calm,
	}
)

// Normalize maps a raw classifier label from the given modality to a
// canonical Mood. Matching is case-insensitive and ignores surrounding
// whitespace. Unknown labels, empty labels and unknown modalities all yield
// Neutral.
func Normalize(modality Modality, raw string) Mood {
	var table map[string]Mood
	switch modality {
	case Text:
		table = textMoods
	case Image:
		table = imageMoods
	default:
		return Default
	}

	if m, ok := table[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return m
	}
	return Default
}

// Labels returns the raw labels understood for a modality, sorted.
func Labels(modality Modality) []string {
	var table map[string]Mood
	switch modality {
	case Text:
		table = textMoods
	case Image:
		table = imageMoods
	default:
		return nil
	}
	labels := make([]string, 0, len(table))
	for k := range table {
		labels = append(labels, k)
	}
	slices.Sort(labels)
	return labels
}
