package nuplugin

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/xerrors"
)

// Encoding is the serialization dialect negotiated with the shell.
type Encoding string

const (
	EncodingMsgpack Encoding = "msgpack"
	EncodingJSON    Encoding = "json"
)

func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(s); e {
	case "", EncodingMsgpack:
		return EncodingMsgpack, nil
	case EncodingJSON:
		return e, nil
	default:
		return "", xerrors.Errorf("unknown encoding %q (want msgpack or json)", s)
	}
}

// codec frames messages on the plugin's standard streams.
type codec interface {
	encode(v any) error
	decode() (any, error)
}

func newCodec(enc Encoding, r io.Reader, w io.Writer) (codec, error) {
	bw := bufio.NewWriter(w)
	// The stream opens with the encoding name prefixed by its length.
	if err := bw.WriteByte(byte(len(enc))); err != nil {
		return nil, xerrors.Errorf("write encoding header: %w", err)
	}
	if _, err := bw.WriteString(string(enc)); err != nil {
		return nil, xerrors.Errorf("write encoding header: %w", err)
	}

	switch enc {
	case EncodingMsgpack:
		dec := msgpack.NewDecoder(bufio.NewReader(r))
		dec.UseLooseInterfaceDecoding(true)
		return &msgpackCodec{w: bw, enc: msgpack.NewEncoder(bw), dec: dec}, nil
	case EncodingJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		return &jsonCodec{w: bw, enc: json.NewEncoder(bw), dec: dec}, nil
	default:
		return nil, xerrors.Errorf("unknown encoding %q", enc)
	}
}

type msgpackCodec struct {
	w   *bufio.Writer
	enc *msgpack.Encoder
	dec *msgpack.Decoder
}

func (c *msgpackCodec) encode(v any) error {
	if err := c.enc.Encode(v); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *msgpackCodec) decode() (any, error) {
	return c.dec.DecodeInterface()
}

type jsonCodec struct {
	w   *bufio.Writer
	enc *json.Encoder
	dec *json.Decoder
}

func (c *jsonCodec) encode(v any) error {
	if err := c.enc.Encode(v); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *jsonCodec) decode() (any, error) {
	var v any
	if err := c.dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// object is a map whose keys are written in insertion order. Both dialects
// carry structs as maps; the shell reads record columns in the order given.
type object []field

type field struct {
	key string
	val any
}

func obj(kv ...any) object {
	o := make(object, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		o = append(o, field{key: kv[i].(string), val: kv[i+1]})
	}
	return o
}

var (
	_ msgpack.CustomEncoder = object(nil)
	_ json.Marshaler        = object(nil)
)

func (o object) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(o)); err != nil {
		return err
	}
	for _, f := range o {
		if err := enc.EncodeString(f.key); err != nil {
			return err
		}
		if err := enc.Encode(f.val); err != nil {
			return err
		}
	}
	return nil
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.val)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
