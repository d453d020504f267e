package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/tonearm/internal/core"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	// Timestamp
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	// Emoji
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	// Event description
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Volume:    e.Volume,
		Repeat:    e.Repeat.String(),
	}

	if t := e.subject(); t != nil {
		data.Title = t.Title
		data.Artist = t.Artist
		data.Album = t.Album
		data.Duration = formatSeconds(t.Duration)
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Title     string
	Artist    string
	Album     string
	Duration  string
	Volume    int
	Repeat    string
}

// subject returns the track the event is about.
func (e Event) subject() *core.Track {
	switch e.Type {
	case EventTrackComplete, EventTrackSkip:
		return e.Previous
	default:
		return e.Track
	}
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventTrackChange:
		if e.Track != nil {
			return fmt.Sprintf("Now playing: %s", trackLabel(e.Track))
		}
		return "Track changed"

	case EventTrackComplete:
		if e.Previous != nil {
			return fmt.Sprintf("Finished: %s", trackLabel(e.Previous))
		}
		return "Track completed"

	case EventTrackSkip:
		if e.Previous != nil {
			return fmt.Sprintf("Skipped: %s (at %s)", trackLabel(e.Previous), formatSeconds(float64(e.Position)))
		}
		return "Track skipped"

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventStop:
		return "Stopped"

	case EventVolumeChange:
		return fmt.Sprintf("Volume: %d%%", e.Volume)

	case EventRepeatChange:
		return fmt.Sprintf("Repeat: %s", e.Repeat)

	case EventQueueEnd:
		return "Queue finished"

	default:
		return "Unknown event"
	}
}

func trackLabel(t *core.Track) string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

func formatSeconds(s float64) string {
	total := int(s)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackComplete:
		return "✅"
	case EventTrackSkip:
		return "⏭️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventStop:
		return "⏹️"
	case EventVolumeChange:
		return "🔊"
	case EventRepeatChange:
		return "🔁"
	case EventQueueEnd:
		return "🏁"
	default:
		return "❓"
	}
}

// String returns the snake_case name of the event type.
func (t EventType) String() string {
	return eventTypeName(t)
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackComplete:
		return "track_complete"
	case EventTrackSkip:
		return "track_skip"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventStop:
		return "stop"
	case EventVolumeChange:
		return "volume_change"
	case EventRepeatChange:
		return "repeat_change"
	case EventQueueEnd:
		return "queue_end"
	default:
		return "unknown"
	}
}
