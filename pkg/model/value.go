package model

import (
	"bytes"
	"encoding/json"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNothing Kind = iota
	KindInt
	KindString
	KindList
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	default:
		return "nothing"
	}
}

// Value is the host-neutral representation of what a command returns:
// nothing, an integer, a string, a list, or a record.
type Value struct {
	kind Kind
	i    int64
	s    string
	list []Value
	rec  *Record
}

func Nothing() Value { return Value{} }
func Int(v int64) Value { return Value{kind: KindInt, i: v} }
func String(v string) Value { return Value{kind: KindString, s: v} }
func List(vals ...Value) Value { return Value{kind: KindList, list: vals} }
func RecordValue(r *Record) Value { return Value{kind: KindRecord, rec: r} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNothing() bool { return v.kind == KindNothing }
func (v Value) AsInt() int64 { return v.i }
func (v Value) AsString() string { return v.s }
func (v Value) AsList() []Value { return v.list }
func (v Value) AsRecord() *Record { return v.rec }

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.i)
	case KindString:
		return json.Marshal(v.s)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindRecord:
		return v.rec.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}

// Record is an ordered set of columns. Column order is insertion order.
type Record struct {
	cols []string
	vals []Value
}

func NewRecord() *Record { return &Record{} }

// Push appends a column. Pushing an existing column replaces its value in place.
func (r *Record) Push(col string, v Value) {
	for i, c := range r.cols {
		if c == col {
			r.vals[i] = v
			return
		}
	}
	r.cols = append(r.cols, col)
	r.vals = append(r.vals, v)
}

func (r *Record) Get(col string) (Value, bool) {
	for i, c := range r.cols {
		if c == col {
			return r.vals[i], true
		}
	}
	return Value{}, false
}

func (r *Record) Has(col string) bool {
	_, ok := r.Get(col)
	return ok
}

func (r *Record) Columns() []string { return r.cols }
func (r *Record) Values() []Value { return r.vals }
func (r *Record) Len() int { return len(r.cols) }

func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.vals[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
