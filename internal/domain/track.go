package domain

// Track is one song or segment within a mix, located by its start offset.
type Track struct {
	StartTime       string `json:"startTime"`
	ArtistName      string `json:"artistName"`
	RemixArtistName string `json:"remixArtistName,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	TrackName       string `json:"trackName"`
}

// Mix is a single long-form recording with its tracklist.
// Tracks are not guaranteed to be stored in start-time order.
type Mix struct {
	MixcloudKey string   `json:"mixcloudKey"`
	Category    string   `json:"category"`
	ListOrder   int      `json:"listOrder"`
	Duration    string   `json:"duration"`
	Name        string   `json:"name"`
	Tags        []string `json:"tags"`
	Notes       string   `json:"notes,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	UploadDate  string   `json:"uploadDate,omitempty"`
	Tracks      []Track  `json:"tracks"`
}

// Category groups mixes, e.g. "aidm".
type Category struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Index int    `json:"index"`
}

type BackgroundCategory struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Background struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	FileName string `json:"fileName"`
}
