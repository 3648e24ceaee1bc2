package hls

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingURI = errors.New("hls: missing uri")
	ErrDuration   = errors.New("hls: invalid duration")
	ErrValue      = errors.New("hls: invalid value")
	ErrRange      = errors.New("hls: invalid byte range")
	ErrMediaType  = errors.New("hls: missing media type")
)

// FieldError locates a validation failure in the manifest.
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate checks that m can be written as syntactically valid m3u8. It
// does not check that the playlist makes sense: group ids referenced by
// variants, target durations and versions are not cross-checked.
//
// The returned error joins one *FieldError per problem.
func (m *Manifest) Validate() error {
	v := validator{}
	v.nonNegative("version", m.Version)
	v.nonNegative("targetDuration", m.TargetDuration)
	v.nonNegative("mediaSequence", m.MediaSequence)
	v.nonNegative("discontinuitySequence", m.DiscontinuitySequence)
	if m.PlaylistType != Live && m.PlaylistType != Vod && m.PlaylistType != Event {
		v.fail("playlistType", fmt.Errorf("%w: %q", ErrValue, m.PlaylistType))
	}

	for _, t := range m.MediaGroups {
		if t.Type == "" {
			v.fail("mediaGroups", ErrMediaType)
		}
		for _, grp := range t.Groups {
			for _, r := range grp.Renditions {
				path := fmt.Sprintf("mediaGroups[%s][%s][%s]", t.Type, grp.ID, r.Name)
				v.quotable(path+".GROUP-ID", grp.ID)
				v.quotable(path+".NAME", r.Name)
				v.attrs(path, r.Attrs, mediaQuoted)
			}
		}
	}

	for i, p := range m.Playlists {
		path := fmt.Sprintf("playlists[%d]", i)
		if p.URI == "" {
			v.fail(path+".uri", ErrMissingURI)
		}
		v.line(path+".uri", p.URI)
		v.attrs(path+".attributes", p.Attributes, streamQuoted)
	}

	for i, s := range m.Segments {
		path := fmt.Sprintf("segments[%d]", i)
		if !s.Duration.Valid() {
			v.fail(path+".duration", fmt.Errorf("%w: %q", ErrDuration, s.Duration))
		}
		if s.URI == "" {
			v.fail(path+".uri", ErrMissingURI)
		}
		v.line(path+".uri", s.URI)
		v.line(path+".dateTimeString", s.DateTimeString)
		if r := s.Byterange; r != nil && (r.Length < 0 || r.Offset != nil && *r.Offset < 0) {
			v.fail(path+".byterange", fmt.Errorf("%w: %s", ErrRange, r))
		}
	}
	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) fail(path string, err error) {
	v.errs = append(v.errs, &FieldError{Path: path, Err: err})
}

func (v *validator) nonNegative(path string, n *int) {
	if n != nil && *n < 0 {
		v.fail(path, fmt.Errorf("%w: negative integer %d", ErrValue, *n))
	}
}

// line rejects text that would split its line in two.
func (v *validator) line(path, s string) {
	if strings.ContainsAny(s, "\r\n") {
		v.fail(path, fmt.Errorf("%w: line break", ErrValue))
	}
}

// quotable rejects text that cannot be written as a quoted-string.
func (v *validator) quotable(path, s string) {
	if strings.ContainsAny(s, "\"\r\n") {
		v.fail(path, fmt.Errorf("%w: %q cannot be quoted", ErrValue, s))
	}
}

func (v *validator) attrs(path string, a Attrs, quoted map[string]bool) {
	for _, attr := range a {
		name := attrName(attr.Key)
		p := path + "." + attr.Key
		s, ok := formatValue(attr.Value)
		switch {
		case !ok:
			v.fail(p, fmt.Errorf("%w: unsupported type %T", ErrValue, attr.Value))
		case quoted[name]:
			v.quotable(p, s)
		default:
			if strings.ContainsAny(s, ",\r\n") {
				v.fail(p, fmt.Errorf("%w: %q must be quoted", ErrValue, s))
			}
		}
	}
}
