package nuplugin

import "golang.org/x/xerrors"

// Call is one evaluated invocation received from the shell. Pipeline input
// is not retained.
type Call struct {
	Name  string
	Head  Span
	named []namedArg
}

type namedArg struct {
	name  string
	value any // nil when the switch was given without a value
}

// HasFlag reports whether the named switch was passed. A switch given as
// --flag=false counts as unset.
func (c *Call) HasFlag(name string) (bool, error) {
	for _, arg := range c.named {
		if arg.name != name {
			continue
		}
		if arg.value == nil {
			return true, nil
		}
		b, err := decodeBool(arg.value)
		if err != nil {
			return false, xerrors.Errorf("flag %q: %w", name, err)
		}
		return b, nil
	}
	return false, nil
}

// decodeRun reads {"name": ..., "call": {"head", "positional", "named"}, "input": ...}.
func decodeRun(body any) (*Call, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, xerrors.Errorf("run: expected map, got %T", body)
	}
	name, ok := m["name"].(string)
	if !ok {
		return nil, xerrors.Errorf("run: missing command name")
	}
	evaluated, ok := m["call"].(map[string]any)
	if !ok {
		return nil, xerrors.Errorf("run %s: expected call map, got %T", name, m["call"])
	}
	head, err := decodeSpan(evaluated["head"])
	if err != nil {
		return nil, xerrors.Errorf("run %s: head: %w", name, err)
	}

	call := &Call{Name: name, Head: head}
	named, _ := evaluated["named"].([]any)
	for i, raw := range named {
		pair, ok := raw.([]any)
		if !ok || len(pair) != 2 {
			return nil, xerrors.Errorf("run %s: named argument %d: expected pair", name, i)
		}
		spanned, ok := pair[0].(map[string]any)
		if !ok {
			return nil, xerrors.Errorf("run %s: named argument %d: expected spanned name", name, i)
		}
		flag, ok := spanned["item"].(string)
		if !ok {
			return nil, xerrors.Errorf("run %s: named argument %d: missing item", name, i)
		}
		call.named = append(call.named, namedArg{name: flag, value: pair[1]})
	}
	return call, nil
}
