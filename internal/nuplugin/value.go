package nuplugin

import (
	"encoding/json"
	"strconv"

	"golang.org/x/xerrors"

	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

// Span locates a value in the shell's source text.
type Span struct {
	Start int64
	End   int64
}

func (s Span) wire() object {
	return obj("start", s.Start, "end", s.End)
}

func decodeSpan(v any) (Span, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Span{}, xerrors.Errorf("span: expected map, got %T", v)
	}
	start, err := toInt(m["start"])
	if err != nil {
		return Span{}, xerrors.Errorf("span start: %w", err)
	}
	end, err := toInt(m["end"])
	if err != nil {
		return Span{}, xerrors.Errorf("span end: %w", err)
	}
	return Span{Start: start, End: end}, nil
}

// encodeValue renders a value in the shell's externally tagged form, every
// nested value carrying span.
func encodeValue(v model.Value, span Span) object {
	s := span.wire()
	switch v.Kind() {
	case model.KindInt:
		return obj("Int", obj("val", v.AsInt(), "span", s))
	case model.KindString:
		return obj("String", obj("val", v.AsString(), "span", s))
	case model.KindList:
		vals := make([]any, 0, len(v.AsList()))
		for _, item := range v.AsList() {
			vals = append(vals, encodeValue(item, span))
		}
		return obj("List", obj("vals", vals, "span", s))
	case model.KindRecord:
		return obj("Record", obj("val", encodeRecord(v.AsRecord(), span), "span", s))
	default:
		return obj("Nothing", obj("span", s))
	}
}

func encodeRecord(r *model.Record, span Span) object {
	cols, vals := r.Columns(), r.Values()
	o := make(object, 0, len(cols))
	for i, c := range cols {
		o = append(o, field{key: c, val: encodeValue(vals[i], span)})
	}
	return o
}

// variant splits an externally tagged enum value into its tag and content.
// Unit variants arrive as bare strings.
func variant(v any) (string, any, error) {
	switch t := v.(type) {
	case string:
		return t, nil, nil
	case map[string]any:
		if len(t) != 1 {
			return "", nil, xerrors.Errorf("expected single-key variant, got %d keys", len(t))
		}
		for tag, content := range t {
			return tag, content, nil
		}
	}
	return "", nil, xerrors.Errorf("expected variant, got %T", v)
}

// decodeBool reads a Bool value as sent for switch arguments.
func decodeBool(v any) (bool, error) {
	tag, content, err := variant(v)
	if err != nil {
		return false, err
	}
	if tag != "Bool" {
		return false, xerrors.Errorf("expected Bool, got %s", tag)
	}
	m, ok := content.(map[string]any)
	if !ok {
		return false, xerrors.Errorf("Bool: expected map, got %T", content)
	}
	b, ok := m["val"].(bool)
	if !ok {
		return false, xerrors.Errorf("Bool: expected bool val, got %T", m["val"])
	}
	return b, nil
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case json.Number:
		return strconv.ParseInt(string(n), 10, 64)
	}
	return 0, xerrors.Errorf("expected integer, got %T", v)
}
