package hls

import (
	"strconv"

	"github.com/MichaelMikeJones/m3u8-parser/m3u"
)

// Segment is a media segment of a media playlist and the tags that apply
// to it.
type Segment struct {
	Duration       Decimal    `json:"duration" yaml:"duration"`
	URI            string     `json:"uri,omitempty" yaml:"uri,omitempty"`
	Discontinuity  bool       `json:"discontinuity,omitempty" yaml:"discontinuity,omitempty"`
	DateTimeString string     `json:"dateTimeString,omitempty" yaml:"dateTimeString,omitempty"`
	Byterange      *ByteRange `json:"byterange,omitempty" yaml:"byterange,omitempty"`
}

// Decimal is a decimal number kept exactly as the producer wrote it.
// EXTINF durations are never reformatted: a floating-point duration
// requires EXT-X-VERSION 3 or higher (RFC 8216 section 7), so turning
// "10" into "10.0" or "10.000" into "10" would change the playlist.
type Decimal string

// Valid reports whether d is a non-negative decimal: digits with at most
// one decimal point.
func (d Decimal) Valid() bool {
	digits, dot := 0, false
	for _, c := range d {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

// Float returns d as a float64, for callers that need arithmetic on it.
func (d Decimal) Float() (float64, error) {
	return strconv.ParseFloat(string(d), 64)
}

// ByteRange is a sub-range of the resource at the segment URI. A nil
// Offset means the range starts where the previous one ended.
type ByteRange struct {
	Length int  `json:"length" yaml:"length"`
	Offset *int `json:"offset,omitempty" yaml:"offset,omitempty"`
}

func (r ByteRange) String() string {
	s := strconv.Itoa(r.Length)
	if r.Offset != nil {
		s += "@" + strconv.Itoa(*r.Offset)
	}
	return s
}

// inf returns the EXTINF tag of s. No title is modelled, so the duration
// is followed by an empty one; a missing duration leaves the value empty.
func (s Segment) inf() m3u.Tag {
	if s.Duration == "" {
		return m3u.Tag{Name: "EXTINF", Arg: []m3u.Value{{}}}
	}
	return m3u.Tag{Name: "EXTINF", Arg: []m3u.Value{{V: string(s.Duration)}, {}}}
}

// segments writes each segment block preceded by a blank line. Within a
// block EXT-X-PROGRAM-DATE-TIME is written before EXT-X-BYTERANGE.
func (w *writer) segments(s []Segment) {
	for i, seg := range s {
		w.blank()
		if seg.Discontinuity {
			w.tag(m3u.Tag{Name: "EXT-X-DISCONTINUITY"})
		}
		w.tag(seg.inf())
		if seg.DateTimeString != "" {
			w.valueTag("EXT-X-PROGRAM-DATE-TIME", seg.DateTimeString)
		}
		if seg.Byterange != nil {
			w.valueTag("EXT-X-BYTERANGE", seg.Byterange.String())
		}
		if seg.URI == "" {
			w.log.Debug().Int("index", i).Msg("segment without uri")
		}
		w.line(seg.URI)
	}
}
