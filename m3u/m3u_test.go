package m3u

import (
	"strings"
	"testing"
)

func TestTagString(t *testing.T) {
	for _, tc := range []struct {
		name string
		tag  Tag
		want string
	}{
		{"bare", Tag{Name: "EXTM3U"}, "#EXTM3U\n"},
		{"arg", Tag{Name: "EXT-X-VERSION", Arg: []Value{{V: "3"}}}, "#EXT-X-VERSION:3\n"},
		{"zero-length arg", Tag{Name: "EXTINF", Arg: []Value{{V: "10.0"}, {V: ""}}, Line: []string{"file"}}, "#EXTINF:10.0,\nfile\n"},
		{"empty arg", Tag{Name: "EXTINF", Arg: []Value{{V: ""}}}, "#EXTINF:\n"},
		{
			"attr",
			Tag{
				Name: "EXT-X-STREAM-INF",
				Attr: []Attr{
					{"BANDWIDTH", Value{V: "648224"}},
					{"RESOLUTION", Value{V: "640x360"}},
					{"CODECS", Value{V: "avc1.4d401e,mp4a.40.2", Quote: true}},
				},
				Line: []string{"https://01.m3u8"},
			},
			"#EXT-X-STREAM-INF:BANDWIDTH=648224,RESOLUTION=640x360,CODECS=\"avc1.4d401e,mp4a.40.2\"\nhttps://01.m3u8\n",
		},
		{
			"arg then attr",
			Tag{Name: "ABC", Arg: []Value{{V: "arg0"}}, Attr: []Attr{{"a", Value{V: "A"}}}},
			"#ABC:arg0,a=A\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if have := tc.tag.String(); have != tc.want {
				t.Fatalf("mismatch:\n\t\thave: %q\n\t\twant: %q", have, tc.want)
			}
		})
	}
}

func TestValueNoEscape(t *testing.T) {
	v := Value{V: `a"b`, Quote: true}
	if have, want := v.String(), `"a"b"`; have != want {
		t.Fatalf("have %s, want %s", have, want)
	}
}

func TestTagWriteAppends(t *testing.T) {
	b := strings.Builder{}
	Tag{Name: "EXT-X-ENDLIST"}.Write(&b)
	Tag{Name: "EXT-X-ENDLIST"}.Write(&b)
	if have, want := b.String(), "#EXT-X-ENDLIST\n#EXT-X-ENDLIST\n"; have != want {
		t.Fatalf("have %q, want %q", have, want)
	}
}

func BenchmarkTagWrite(b *testing.B) {
	tag := Tag{Name: "EXTINF", Arg: []Value{{V: "10.000"}, {V: ""}}, Line: []string{"movie.ts"}}
	s := strings.Builder{}
	for n := 0; n < b.N; n++ {
		s.Reset()
		tag.Write(&s)
	}
}
