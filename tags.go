package hls

import (
	"strconv"

	"github.com/MichaelMikeJones/m3u8-parser/m3u"
)

// tagRule renders one top-level manifest field. present reports whether
// the field holds something to write; empty composites are not present.
type tagRule struct {
	key     string
	present func(m *Manifest) bool
	write   func(w *writer, m *Manifest)
}

// tagOrder is the emission order of the top-level tags. EXTM3U always
// precedes it. DiscontinuityStarts has no rule.
var tagOrder = [...]tagRule{
	{
		key:     "version",
		present: func(m *Manifest) bool { return m.Version != nil },
		write:   func(w *writer, m *Manifest) { w.intTag("EXT-X-VERSION", *m.Version) },
	},
	{
		key:     "mediaGroups",
		present: func(m *Manifest) bool { return len(m.MediaGroups) > 0 },
		write:   func(w *writer, m *Manifest) { w.mediaGroups(m.MediaGroups) },
	},
	{
		key:     "playlists",
		present: func(m *Manifest) bool { return len(m.Playlists) > 0 },
		write:   func(w *writer, m *Manifest) { w.playlists(m.Playlists) },
	},
	{
		key:     "targetDuration",
		present: func(m *Manifest) bool { return m.TargetDuration != nil },
		write:   func(w *writer, m *Manifest) { w.intTag("EXT-X-TARGETDURATION", *m.TargetDuration) },
	},
	{
		key:     "mediaSequence",
		present: func(m *Manifest) bool { return m.MediaSequence != nil },
		write:   func(w *writer, m *Manifest) { w.intTag("EXT-X-MEDIA-SEQUENCE", *m.MediaSequence) },
	},
	{
		key:     "playlistType",
		present: func(m *Manifest) bool { return m.PlaylistType != "" },
		write:   func(w *writer, m *Manifest) { w.valueTag("EXT-X-PLAYLIST-TYPE", m.PlaylistType) },
	},
	{
		key:     "discontinuitySequence",
		present: func(m *Manifest) bool { return m.DiscontinuitySequence != nil },
		write:   func(w *writer, m *Manifest) { w.intTag("EXT-X-DISCONTINUITY-SEQUENCE", *m.DiscontinuitySequence) },
	},
	{
		key: "allowCache",
		// media playlists only; parsers report allowCache for masters too
		present: func(m *Manifest) bool { return m.AllowCache != nil && len(m.Playlists) == 0 },
		write:   func(w *writer, m *Manifest) { w.valueTag("EXT-X-ALLOW-CACHE", yesno(*m.AllowCache)) },
	},
	{
		key:     "segments",
		present: func(m *Manifest) bool { return len(m.Segments) > 0 },
		write:   func(w *writer, m *Manifest) { w.segments(m.Segments) },
	},
	{
		key:     "endList",
		present: func(m *Manifest) bool { return m.EndList },
		write:   func(w *writer, m *Manifest) { w.tag(m3u.Tag{Name: "EXT-X-ENDLIST"}) },
	},
}

// TagOrder returns the manifest keys in the order their tags are written.
func TagOrder() []string {
	keys := make([]string, len(tagOrder))
	for i, r := range tagOrder {
		keys[i] = r.key
	}
	return keys
}

func (w *writer) intTag(name string, n int) {
	w.valueTag(name, strconv.Itoa(n))
}

func (w *writer) valueTag(name, v string) {
	w.tag(m3u.Tag{Name: name, Arg: []m3u.Value{{V: v}}})
}
