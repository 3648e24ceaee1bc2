package hls

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the serialization of a manifest handed to Decode.
type Format int

const (
	JSON Format = iota
	YAML
)

var ErrFormat = errors.New("hls: unknown manifest format")

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	}
	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// ParseFormat parses the name of a format: json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrFormat, s)
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Decode reads a manifest in the given format. Object keys of attribute
// lists and media groups keep their order in the input.
func Decode(r io.Reader, f Format) (*Manifest, error) {
	m := &Manifest{}
	switch f {
	case JSON:
		if err := json.NewDecoder(r).Decode(m); err != nil {
			return nil, fmt.Errorf("hls: decode json manifest: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(m); err != nil && err != io.EOF {
			return nil, fmt.Errorf("hls: decode yaml manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrFormat, f)
	}
	return m, nil
}

// UnmarshalJSON accepts a JSON number or string and keeps its text.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*d = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Decimal(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("hls: decimal: %w", err)
		}
		*d = Decimal(n)
	}
	return nil
}

func (d *Decimal) UnmarshalYAML(n *yaml.Node) error {
	n = resolve(n)
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("hls: line %d: decimal must be a scalar", n.Line)
	}
	if n.ShortTag() == "!!null" {
		*d = ""
		return nil
	}
	*d = Decimal(n.Value)
	return nil
}

func (a *Attrs) UnmarshalJSON(b []byte) error {
	*a = nil
	return eachJSONKey(b, func(key string, raw json.RawMessage) error {
		v, err := jsonValue(raw)
		if err != nil {
			return fmt.Errorf("hls: attribute %s: %w", key, err)
		}
		*a = append(*a, Attr{Key: key, Value: v})
		return nil
	})
}

func (a *Attrs) UnmarshalYAML(n *yaml.Node) error {
	*a = nil
	return eachYAMLKey(n, func(key string, v *yaml.Node) error {
		val, err := yamlValue(v)
		if err != nil {
			return fmt.Errorf("hls: attribute %s: %w", key, err)
		}
		*a = append(*a, Attr{Key: key, Value: val})
		return nil
	})
}

// UnmarshalJSON decodes type → group-id → name objects. A repeated key
// merges into the earlier entry, as Add does.
func (g *MediaGroups) UnmarshalJSON(b []byte) error {
	*g = nil
	return eachJSONKey(b, func(typ string, raw json.RawMessage) error {
		t := g.typ(typ)
		return eachJSONKey(raw, func(id string, raw json.RawMessage) error {
			grp := t.group(id)
			return eachJSONKey(raw, func(name string, raw json.RawMessage) error {
				var a Attrs
				if err := a.UnmarshalJSON(raw); err != nil {
					return err
				}
				grp.put(name, a)
				return nil
			})
		})
	})
}

func (g *MediaGroups) UnmarshalYAML(n *yaml.Node) error {
	*g = nil
	return eachYAMLKey(n, func(typ string, v *yaml.Node) error {
		t := g.typ(typ)
		return eachYAMLKey(v, func(id string, v *yaml.Node) error {
			grp := t.group(id)
			return eachYAMLKey(v, func(name string, v *yaml.Node) error {
				var a Attrs
				if err := a.UnmarshalYAML(v); err != nil {
					return err
				}
				grp.put(name, a)
				return nil
			})
		})
	})
}

// eachJSONKey calls fn for every member of the JSON object in b, in
// document order. null is an empty object.
func eachJSONKey(b []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("hls: expected object, found %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// jsonValue decodes an attribute value. Numbers keep their text; an
// object of width and height is a Resolution.
func jsonValue(raw json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if obj, ok := v.(map[string]interface{}); ok {
		if r, ok := resolutionOf(obj); ok {
			return r, nil
		}
	}
	return v, nil
}

func resolutionOf(obj map[string]interface{}) (Resolution, bool) {
	if len(obj) != 2 {
		return Resolution{}, false
	}
	w, wok := obj["width"]
	h, hok := obj["height"]
	if !wok || !hok {
		return Resolution{}, false
	}
	width, err := strconv.Atoi(fmt.Sprint(w))
	if err != nil {
		return Resolution{}, false
	}
	height, err := strconv.Atoi(fmt.Sprint(h))
	if err != nil {
		return Resolution{}, false
	}
	return Resolution{Width: width, Height: height}, true
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		return resolve(n.Content[0])
	}
	return n
}

// eachYAMLKey is eachJSONKey for a yaml mapping node.
func eachYAMLKey(n *yaml.Node, fn func(key string, v *yaml.Node) error) error {
	n = resolve(n)
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("hls: line %d: expected mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// yamlValue is jsonValue for a yaml node.
func yamlValue(n *yaml.Node) (interface{}, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			err := n.Decode(&b)
			return b, err
		case "!!int", "!!float":
			return json.Number(n.Value), nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		a := make([]interface{}, 0, len(n.Content))
		for _, e := range n.Content {
			v, err := yamlValue(e)
			if err != nil {
				return nil, err
			}
			a = append(a, v)
		}
		return a, nil
	case yaml.MappingNode:
		obj := map[string]interface{}{}
		err := eachYAMLKey(n, func(key string, v *yaml.Node) error {
			val, err := yamlValue(v)
			obj[key] = val
			return err
		})
		if err != nil {
			return nil, err
		}
		if r, ok := resolutionOf(obj); ok {
			return r, nil
		}
		return obj, nil
	}
	return nil, fmt.Errorf("hls: line %d: unsupported yaml node", n.Line)
}
