// Package nuplugin serves commands to nushell over the plugin protocol on
// the process's standard streams.
package nuplugin

import (
	"context"
	"errors"
	"io"

	"cdr.dev/slog"
	"golang.org/x/xerrors"

	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

const (
	protocolName = "nu-plugin"
	// ProtocolVersion is the nushell release whose wire format is spoken.
	ProtocolVersion = "0.101.0"

	// CodeInternal labels failures that carry no code of their own.
	CodeInternal = "port_list::internal"
)

// Flag is a boolean switch accepted by a command.
type Flag struct {
	Long  string
	Short rune
	Desc  string
}

type Signature struct {
	Name        string
	Description string
	Category    string
	SearchTerms []string
	Switches    []Flag
}

// Handler runs one invocation. Returning a *model.LabeledError keeps its
// code; any other error is reported under CodeInternal.
type Handler func(ctx context.Context, call *Call) (model.Value, error)

type Command struct {
	Signature Signature
	Run       Handler
}

type Options struct {
	Version  string
	Encoding Encoding
	Log      slog.Logger
	Commands []Command
}

// Serve speaks the plugin protocol on r and w until the shell says goodbye
// or closes the stream.
func Serve(ctx context.Context, r io.Reader, w io.Writer, opts Options) error {
	if opts.Encoding == "" {
		opts.Encoding = EncodingMsgpack
	}
	c, err := newCodec(opts.Encoding, r, w)
	if err != nil {
		return err
	}
	s := &session{codec: c, opts: opts, log: opts.Log.Named("nuplugin")}
	return s.run(ctx)
}

type session struct {
	codec codec
	opts  Options
	log   slog.Logger
}

func (s *session) run(ctx context.Context) error {
	err := s.codec.encode(obj("Hello", obj(
		"protocol", protocolName,
		"version", ProtocolVersion,
		"features", []any{},
	)))
	if err != nil {
		return xerrors.Errorf("send hello: %w", err)
	}

	for {
		msg, err := s.codec.decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug(ctx, "engine closed the stream")
				return nil
			}
			return xerrors.Errorf("read message: %w", err)
		}

		tag, content, err := variant(msg)
		if err != nil {
			return xerrors.Errorf("read message: %w", err)
		}
		switch tag {
		case "Hello":
			if err := s.hello(ctx, content); err != nil {
				return err
			}
		case "Call":
			if err := s.call(ctx, content); err != nil {
				return err
			}
		case "Goodbye":
			s.log.Debug(ctx, "engine said goodbye")
			return nil
		default:
			// Signal, Data, End, Drop, Ack and engine call responses concern
			// streams and engine calls this plugin never opens.
			s.log.Debug(ctx, "ignoring engine message", slog.F("message", tag))
		}
	}
}

func (s *session) hello(ctx context.Context, content any) error {
	m, ok := content.(map[string]any)
	if !ok {
		return xerrors.Errorf("hello: expected map, got %T", content)
	}
	if proto, _ := m["protocol"].(string); proto != protocolName {
		return xerrors.Errorf("hello: unexpected protocol %q", proto)
	}
	version, _ := m["version"].(string)
	s.log.Debug(ctx, "engine hello", slog.F("engine_version", version))
	return nil
}

func (s *session) call(ctx context.Context, content any) error {
	pair, ok := content.([]any)
	if !ok || len(pair) != 2 {
		return xerrors.Errorf("call: expected [id, call], got %T", content)
	}
	id, err := toInt(pair[0])
	if err != nil {
		return xerrors.Errorf("call id: %w", err)
	}
	tag, body, err := variant(pair[1])
	if err != nil {
		return xerrors.Errorf("call %d: %w", id, err)
	}

	var resp object
	switch tag {
	case "Metadata":
		resp = obj("Metadata", obj("version", s.opts.Version))
	case "Signature":
		sigs := make([]any, 0, len(s.opts.Commands))
		for _, cmd := range s.opts.Commands {
			sigs = append(sigs, encodeSignature(cmd.Signature))
		}
		resp = obj("Signature", sigs)
	case "Run":
		resp = s.runCommand(ctx, body)
	default:
		resp = errorResponse(&model.LabeledError{
			Code: CodeInternal,
			Msg:  "unsupported plugin call " + tag,
		}, Span{})
	}

	if err := s.codec.encode(obj("CallResponse", []any{id, resp})); err != nil {
		return xerrors.Errorf("call %d: send response: %w", id, err)
	}
	return nil
}

// runCommand always produces a response. Malformed calls are answered with
// an error so the session stays open.
func (s *session) runCommand(ctx context.Context, body any) object {
	call, err := decodeRun(body)
	if err != nil {
		s.log.Debug(ctx, "malformed run call", slog.Error(err))
		return errorResponse(&model.LabeledError{
			Code: CodeInternal,
			Msg:  err.Error(),
		}, Span{})
	}

	var cmd *Command
	for i := range s.opts.Commands {
		if s.opts.Commands[i].Signature.Name == call.Name {
			cmd = &s.opts.Commands[i]
			break
		}
	}
	if cmd == nil {
		return errorResponse(&model.LabeledError{
			Code: CodeInternal,
			Msg:  "unknown command " + call.Name,
		}, call.Head)
	}

	s.log.Debug(ctx, "running command", slog.F("command", call.Name))
	v, err := cmd.Run(ctx, call)
	if err != nil {
		var labeled *model.LabeledError
		if !errors.As(err, &labeled) {
			labeled = &model.LabeledError{Code: CodeInternal, Msg: err.Error()}
		}
		return errorResponse(labeled, call.Head)
	}
	return obj("PipelineData", obj("Value", []any{encodeValue(v, call.Head), nil}))
}

func errorResponse(e *model.LabeledError, span Span) object {
	return obj("Error", obj(
		"msg", e.Msg,
		"labels", []any{obj("text", e.Msg, "span", span.wire())},
		"code", e.Code,
		"url", nil,
		"help", nil,
		"inner", []any{},
	))
}

func encodeSignature(sig Signature) object {
	named := []any{obj(
		"long", "help",
		"short", "h",
		"arg", nil,
		"required", false,
		"desc", "Display the help message for this command",
		"var_id", nil,
		"default_value", nil,
	)}
	for _, f := range sig.Switches {
		var short any
		if f.Short != 0 {
			short = string(f.Short)
		}
		named = append(named, obj(
			"long", f.Long,
			"short", short,
			"arg", nil,
			"required", false,
			"desc", f.Desc,
			"var_id", nil,
			"default_value", nil,
		))
	}

	terms := make([]any, 0, len(sig.SearchTerms))
	for _, t := range sig.SearchTerms {
		terms = append(terms, t)
	}

	return obj(
		"sig", obj(
			"name", sig.Name,
			"description", sig.Description,
			"extra_description", "",
			"search_terms", terms,
			"required_positional", []any{},
			"optional_positional", []any{},
			"rest_positional", nil,
			"named", named,
			"input_output_types", []any{[]any{"Any", obj("Table", []any{})}},
			"allow_variants_without_examples", true,
			"is_filter", false,
			"creates_scope", false,
			"allows_unknown_args", false,
			"category", sig.Category,
		),
		"examples", []any{},
	)
}
