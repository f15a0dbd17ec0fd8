package catalog

// DefaultMoods are seeded into an empty catalog. Every canonical mood is
// present so that recommendation lookups can resolve it.
var DefaultMoods = []MoodDoc{
	{Name: "Happy", Color: "#FFC300", Description: "Cheerful, upbeat"},
	{Name: "Relax", Color: "#3BFFD5", Description: "Relaxed, gentle"},
	{Name: "Sad", Color: "#1D52FF", Description: "Sad, lonely"},
	{Name: "Calm", Color: "#7F4EAA", Description: "Calm, still"},
	{Name: "Powerful", Color: "#FF5733", Description: "Strong, confident"},
	{Name: "Romantic", Color: "#FF33F6", Description: "Romantic, dreamy"},
	{Name: "Love", Color: "#FF3333", Description: "Loving, warm"},
	{Name: "Anxiety", Color: "#FF9933", Description: "Anxious, tense"},
	{Name: "Anger", Color: "#B30000", Description: "Angry, furious"},
	{Name: "Pride", Color: "#77FF33", Description: "Proud"},
	{Name: "Longing", Color: "#336EFF", Description: "Nostalgic, longing"},
	{Name: "Neutral", Color: "#9E9E9E", Description: "No strong emotion"},
}

// DefaultGenres are seeded into an empty catalog, including every genre the
// mood mapping can resolve to.
var DefaultGenres = []GenreDoc{
	{Name: "Pop", Description: "Popular music"},
	{Name: "Rock", Description: "Rock"},
	{Name: "EDM", Description: "Electronic dance music"},
	{Name: "Hip-Hop", Description: "Hip-Hop/Rap"},
	{Name: "Jazz", Description: "Jazz"},
	{Name: "Classical", Description: "Classical"},
	{Name: "K-Pop", Description: "Korean pop"},
	{Name: "R&B", Description: "Rhythm and blues"},
	{Name: "Remix", Description: "Remixes"},
	{Name: "Dance", Description: "Dance"},
	{Name: "Ballad", Description: "Ballads"},
	{Name: "LoFi", Description: "Lo-fi beats"},
	{Name: "Chill", Description: "Chill-out"},
}
