package hls

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MichaelMikeJones/m3u8-parser/m3u"
)

// Attr is one entry of an attribute list, keyed as the producer spelled it.
// Value is a string, bool, json.Number, Go number, Resolution or a list of
// those.
type Attr struct {
	Key   string
	Value interface{}
}

// Attrs is an ordered attribute list. Attributes are written in slice
// order.
type Attrs []Attr

// Get returns the value of the first attribute named key.
func (a Attrs) Get(key string) (interface{}, bool) {
	for _, v := range a {
		if v.Key == key {
			return v.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of the first attribute named key, or appends it.
func (a *Attrs) Set(key string, value interface{}) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attr{Key: key, Value: value})
}

// Resolution is the decimal-resolution of a variant stream.
type Resolution struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Attribute names whose values are quoted-strings. All other names are
// written unquoted.
var (
	mediaQuoted = map[string]bool{
		"URI":             true,
		"LANGUAGE":        true,
		"ASSOC-LANGUAGE":  true,
		"INSTREAM-ID":     true,
		"CHARACTERISTICS": true,
		"CHANNELS":        true,
	}
	streamQuoted = map[string]bool{
		"CODECS":          true,
		"AUDIO":           true,
		"VIDEO":           true,
		"SUBTITLES":       true,
		"CLOSED-CAPTIONS": true,
	}
)

// attrName returns the wire name of a manifest attribute key. instreamId
// cannot be spelled with a hyphen by the parser and is mapped explicitly.
func attrName(key string) string {
	if key == "instreamId" {
		return "INSTREAM-ID"
	}
	return strings.ToUpper(key)
}

// mediaAttr formats an EXT-X-MEDIA attribute.
func (w *writer) mediaAttr(a Attr) m3u.Attr {
	name := attrName(a.Key)
	return m3u.Attr{Key: name, Value: m3u.Value{V: w.format(name, a.Value), Quote: mediaQuoted[name]}}
}

// streamAttr formats an EXT-X-STREAM-INF attribute. CLOSED-CAPTIONS=NONE
// is an enumerated-string, not a group id, and is only left bare when the
// encoder asks for RFC output.
func (w *writer) streamAttr(a Attr) m3u.Attr {
	name := attrName(a.Key)
	v := m3u.Value{V: w.format(name, a.Value), Quote: streamQuoted[name]}
	if _, ok := a.Value.(Resolution); ok {
		v.Quote = false
	}
	if w.rfc && name == "CLOSED-CAPTIONS" && v.V == "NONE" {
		v.Quote = false
	}
	return m3u.Attr{Key: name, Value: v}
}

func (w *writer) format(name string, v interface{}) string {
	s, ok := formatValue(v)
	if !ok {
		w.log.Debug().
			Str("attr", name).
			Str("type", fmt.Sprintf("%T", v)).
			Msg("attribute value written with default formatting")
	}
	return s
}

// formatValue returns the text of an attribute value. Booleans become the
// YES/NO enumerated-string. ok is false when v is not a supported
// attribute type; s then holds its default formatting.
func formatValue(v interface{}) (s string, ok bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case bool:
		return yesno(t), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case Resolution:
		return t.String(), true
	case *Resolution:
		if t == nil {
			return "", true
		}
		return t.String(), true
	case []string:
		return strings.Join(t, ","), true
	case []interface{}:
		a := make([]string, len(t))
		ok = true
		for i, e := range t {
			var eok bool
			a[i], eok = formatValue(e)
			ok = ok && eok
		}
		return strings.Join(a, ","), ok
	}
	return fmt.Sprint(v), false
}

func yesno(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
