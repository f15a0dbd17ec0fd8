package lastfm

// Tag is a Last.fm tag with its weight. Count is absent from some
// artist responses.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

// topTagsResponse is the JSON shape shared by track.getTopTags and
// artist.getTopTags.
type topTagsResponse struct {
	TopTags struct {
		Tag []Tag `json:"tag"`
	} `json:"toptags"`
}

type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
