// Package m3u is the line-level text model of an m3u8 document: a tag, its
// positional arguments, its KEY=VALUE attribute list and the plain lines
// (URIs) that follow it.
package m3u

import "strings"

// Tag is one directive and the lines that belong to it.
//
//	#NAME:arg0,arg1,KEY=VALUE,KEY="VALUE"
//	line0
//
// Arguments are written before attributes. A tag with neither is written
// without the colon.
type Tag struct {
	Name string
	Arg  []Value
	Attr []Attr
	Line []string
}

// Attr is a single KEY=VALUE pair of a tag's attribute list.
type Attr struct {
	Key   string
	Value Value
}

// Write appends the tag to b, terminated by a newline.
func (t Tag) Write(b *strings.Builder) {
	b.WriteByte('#')
	b.WriteString(t.Name)
	sep := ":"
	for _, v := range t.Arg {
		b.WriteString(sep)
		v.write(b)
		sep = ","
	}
	for _, a := range t.Attr {
		b.WriteString(sep)
		b.WriteString(a.Key)
		b.WriteByte('=')
		a.Value.write(b)
		sep = ","
	}
	for _, l := range t.Line {
		b.WriteByte('\n')
		b.WriteString(l)
	}
	b.WriteByte('\n')
}

func (t Tag) String() string {
	b := strings.Builder{}
	t.Write(&b)
	return b.String()
}

// Value is the text of an argument or attribute. Quoted values are wrapped
// in double quotes as-is; the producer is responsible for not putting a
// quote or newline inside one.
type Value struct {
	V     string
	Quote bool
}

func (v Value) write(b *strings.Builder) {
	if v.Quote {
		b.WriteByte('"')
		b.WriteString(v.V)
		b.WriteByte('"')
		return
	}
	b.WriteString(v.V)
}

func (v Value) String() string {
	if v.Quote {
		return `"` + v.V + `"`
	}
	return v.V
}
