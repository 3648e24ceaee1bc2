// Package hls encodes HLS manifests into m3u8 playlists (RFC 8216).
//
// A Manifest is the parsed form of a playlist as produced by an m3u8 reader.
// Encoding walks a fixed tag order and writes every tag present in the
// manifest, so the output is stable regardless of how the manifest was
// built. The encoder trusts its input: malformed or missing fields are
// skipped silently unless Encoder.Strict is set.
package hls

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MichaelMikeJones/m3u8-parser/m3u"
)

// Media playlist types
const (
	Vod   = "VOD"   // immutable
	Event = "EVENT" // append-only
	Live  = ""      // sliding-window
)

// Manifest is a master or media playlist. Pointer and string fields are
// absent when nil or empty; a composite field with no entries is absent.
type Manifest struct {
	Version               *int   `json:"version,omitempty" yaml:"version,omitempty"`
	TargetDuration        *int   `json:"targetDuration,omitempty" yaml:"targetDuration,omitempty"`
	MediaSequence         *int   `json:"mediaSequence,omitempty" yaml:"mediaSequence,omitempty"`
	DiscontinuitySequence *int   `json:"discontinuitySequence,omitempty" yaml:"discontinuitySequence,omitempty"`
	PlaylistType          string `json:"playlistType,omitempty" yaml:"playlistType,omitempty"`
	AllowCache            *bool  `json:"allowCache,omitempty" yaml:"allowCache,omitempty"`
	EndList               bool   `json:"endList,omitempty" yaml:"endList,omitempty"`

	// DiscontinuityStarts indexes the segments that carry a discontinuity.
	// It is derived information and never written.
	DiscontinuityStarts []int `json:"discontinuityStarts,omitempty" yaml:"discontinuityStarts,omitempty"`

	MediaGroups MediaGroups `json:"mediaGroups,omitempty" yaml:"mediaGroups,omitempty"`
	Playlists   []Variant   `json:"playlists,omitempty" yaml:"playlists,omitempty"`
	Segments    []Segment   `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// Int returns a pointer to n, for the optional integer fields of Manifest.
func Int(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Encode writes the manifest to w as an m3u8 playlist.
func (m *Manifest) Encode(w io.Writer) error {
	return Encoder{}.Encode(w, m)
}

// String returns the m3u8 text of the manifest.
func (m *Manifest) String() string {
	return Marshal(m)
}

// Marshal returns the m3u8 text of m using the default encoder. It never
// fails; see Encoder for strict handling.
func Marshal(m *Manifest) string {
	s, _ := Encoder{}.Marshal(m)
	return s
}

// Encoder holds encoding options. The zero value is the permissive
// encoder. An Encoder is safe for concurrent use.
type Encoder struct {
	// Strict runs Manifest.Validate before encoding and returns its error
	// instead of writing a possibly malformed playlist.
	Strict bool

	// RFCClosedCaptions writes CLOSED-CAPTIONS=NONE unquoted. By default
	// every CLOSED-CAPTIONS value is quoted, which is what existing
	// consumers of this writer expect.
	RFCClosedCaptions bool

	// Logger receives debug diagnostics for input that was skipped or
	// rendered on a best-effort basis. Nil discards them.
	Logger *zerolog.Logger
}

// Marshal returns the m3u8 text of m.
func (e Encoder) Marshal(m *Manifest) (string, error) {
	if m == nil {
		m = &Manifest{}
	}
	if e.Strict {
		if err := m.Validate(); err != nil {
			return "", err
		}
	}
	w := e.writer(m)
	w.tag(m3u.Tag{Name: "EXTM3U"})
	for _, rule := range tagOrder {
		if rule.present(m) {
			rule.write(w, m)
		}
	}
	return w.b.String(), nil
}

// Encode writes the m3u8 text of m to dst.
func (e Encoder) Encode(dst io.Writer, m *Manifest) error {
	s, err := e.Marshal(m)
	if err != nil {
		return err
	}
	_, err = io.WriteString(dst, s)
	return err
}

// writer accumulates one document.
type writer struct {
	b   strings.Builder
	rfc bool
	log zerolog.Logger
}

func (e Encoder) writer(m *Manifest) *writer {
	w := &writer{rfc: e.RFCClosedCaptions, log: zerolog.Nop()}
	if e.Logger != nil {
		w.log = *e.Logger
	}
	w.b.Grow(256 + 96*len(m.Playlists) + 48*len(m.Segments) + 128*m.MediaGroups.Len())
	return w
}

func (w *writer) tag(t m3u.Tag) {
	t.Write(&w.b)
}

func (w *writer) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *writer) blank() {
	w.b.WriteByte('\n')
}
