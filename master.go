package hls

import (
	"github.com/MichaelMikeJones/m3u8-parser/m3u"
)

// MediaGroups holds the alternative renditions of a master playlist by
// media type, then group id, then rendition name. Every level keeps
// insertion order, which is the order the EXT-X-MEDIA tags are written in.
type MediaGroups []MediaType

// MediaType is the set of groups of one TYPE (AUDIO, VIDEO, SUBTITLES or
// CLOSED-CAPTIONS).
type MediaType struct {
	Type   string
	Groups []Group
}

// Group is a GROUP-ID and its renditions.
type Group struct {
	ID         string
	Renditions []Rendition
}

// Rendition is a NAME and the remaining EXT-X-MEDIA attributes.
type Rendition struct {
	Name  string
	Attrs Attrs
}

// Add inserts a rendition, creating its type and group as needed. Adding
// an existing rendition replaces its attributes in place.
func (g *MediaGroups) Add(typ, group, name string, attrs Attrs) {
	g.typ(typ).group(group).put(name, attrs)
}

// Rendition returns the attributes of the named rendition.
func (g MediaGroups) Rendition(typ, group, name string) (Attrs, bool) {
	for _, t := range g {
		if t.Type != typ {
			continue
		}
		for _, grp := range t.Groups {
			if grp.ID != group {
				continue
			}
			for _, r := range grp.Renditions {
				if r.Name == name {
					return r.Attrs, true
				}
			}
		}
	}
	return nil, false
}

// Len returns the number of renditions across all types and groups.
func (g MediaGroups) Len() (n int) {
	for _, t := range g {
		for _, grp := range t.Groups {
			n += len(grp.Renditions)
		}
	}
	return n
}

func (g *MediaGroups) typ(typ string) *MediaType {
	for i := range *g {
		if (*g)[i].Type == typ {
			return &(*g)[i]
		}
	}
	*g = append(*g, MediaType{Type: typ})
	return &(*g)[len(*g)-1]
}

func (t *MediaType) group(id string) *Group {
	for i := range t.Groups {
		if t.Groups[i].ID == id {
			return &t.Groups[i]
		}
	}
	t.Groups = append(t.Groups, Group{ID: id})
	return &t.Groups[len(t.Groups)-1]
}

func (grp *Group) put(name string, attrs Attrs) {
	for i := range grp.Renditions {
		if grp.Renditions[i].Name == name {
			grp.Renditions[i].Attrs = attrs
			return
		}
	}
	grp.Renditions = append(grp.Renditions, Rendition{Name: name, Attrs: attrs})
}

// Variant is a variant stream of a master playlist: the EXT-X-STREAM-INF
// attributes and the URI of its media playlist.
type Variant struct {
	Attributes Attrs  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	URI        string `json:"uri,omitempty" yaml:"uri,omitempty"`
}

// mediaGroups writes one EXT-X-MEDIA tag per rendition and a blank line.
func (w *writer) mediaGroups(g MediaGroups) {
	for _, t := range g {
		for _, grp := range t.Groups {
			for _, r := range grp.Renditions {
				tag := m3u.Tag{Name: "EXT-X-MEDIA", Attr: make([]m3u.Attr, 0, 3+len(r.Attrs))}
				tag.Attr = append(tag.Attr,
					m3u.Attr{Key: "TYPE", Value: m3u.Value{V: t.Type}},
					m3u.Attr{Key: "GROUP-ID", Value: m3u.Value{V: grp.ID, Quote: true}},
					m3u.Attr{Key: "NAME", Value: m3u.Value{V: r.Name, Quote: true}},
				)
				for _, a := range r.Attrs {
					tag.Attr = append(tag.Attr, w.mediaAttr(a))
				}
				w.tag(tag)
			}
		}
	}
	w.blank()
}

// playlists writes each variant as an EXT-X-STREAM-INF tag, its URI and a
// blank line, in input order.
func (w *writer) playlists(p []Variant) {
	for i, v := range p {
		if v.URI == "" {
			w.log.Debug().Int("index", i).Msg("variant stream without uri")
		}
		tag := m3u.Tag{Name: "EXT-X-STREAM-INF", Attr: make([]m3u.Attr, 0, len(v.Attributes)), Line: []string{v.URI}}
		if len(v.Attributes) == 0 {
			// keep the colon: #EXT-X-STREAM-INF:
			tag.Arg = []m3u.Value{{}}
		}
		for _, a := range v.Attributes {
			tag.Attr = append(tag.Attr, w.streamAttr(a))
		}
		w.tag(tag)
		w.blank()
	}
}
