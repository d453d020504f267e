package core

import "time"

// Track represents a playable audio track from the library.
// Tracks are shared by pointer and never mutated after construction.
type Track struct {
	ID          int64   `json:"id"`
	URI         string  `json:"uri"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	Genre       string  `json:"genre"`
	Duration    float64 `json:"duration"` // seconds
	TrackNumber int64   `json:"track_number"`
	DiscNumber  int64   `json:"disc_number"`
	CoverArt    *int64  `json:"cover_art,omitempty"`
}

// Length returns the nominal duration of the track.
func (t *Track) Length() time.Duration {
	if t == nil {
		return 0
	}
	return time.Duration(t.Duration * float64(time.Second))
}
