// Package genre maps canonical moods to preferred genres and builds the
// ordered genre fallback list.
package genre

import (
	"github.com/justestif/moodtunes/internal/mood"
)

// Genre is a genre name as stored in the catalog.
type Genre string

// Genres referenced by the mood mapping.
const (
	Dance  Genre = "Dance"
	Ballad Genre = "Ballad"
	Rock   Genre = "Rock"
	LoFi   Genre = "LoFi"
	RnB    Genre = "R&B"
	Chill  Genre = "Chill"
	EDM    Genre = "EDM"
	Pop    Genre = "Pop"
)

// Default is the global default genre.
const Default = Pop

func (g Genre) String() string {
	return string(g)
}

var byMood = map[mood.Mood]Genre{
	mood.Happy:    Dance,
	mood.Sad:      Ballad,
	mood.Anger:    Rock,
	mood.Calm:     LoFi,
	mood.Love:     RnB,
	mood.Anxiety:  Chill,
	mood.Powerful: EDM,
	mood.Neutral:  Pop,
}

// Resolve returns the preferred genre for m. It is total: moods without a
// mapping resolve to Default.
func Resolve(m mood.Mood) Genre {
	if g, ok := byMood[m]; ok {
		return g
	}
	return Default
}
