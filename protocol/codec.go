package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/randalmurphal/quartustcl/quote"
	"github.com/randalmurphal/quartustcl/tcllist"
	"github.com/randalmurphal/quartustcl/transport"
	"github.com/randalmurphal/quartustcl/truncate"
)

// DefaultLogLimit is the default number of runes of a command or reply
// line kept in log attributes.
const DefaultLogLimit = 512

// Codec runs commands over a Transport and decodes their replies.
// It is not safe for concurrent use: one request may be outstanding.
type Codec struct {
	t      transport.Transport
	ids    IDSource
	logger *slog.Logger
	trace  io.Writer
	clip   *truncate.Truncator
	limit  int
}

// Option configures a Codec.
type Option func(*Codec)

// WithIDSource sets the sentinel identifier source.
func WithIDSource(ids IDSource) Option {
	return func(c *Codec) {
		c.ids = ids
	}
}

// WithLogger sets the logger for traffic and discarded output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) {
		c.logger = l
	}
}

// WithTrace mirrors every command and reply line to w, prefixed
// "(tcl) <<<" and "(tcl) >>>".
func WithTrace(w io.Writer) Option {
	return func(c *Codec) {
		c.trace = w
	}
}

// WithLogLimit caps how many runes of commands and reply lines appear in
// log attributes. Zero or less disables clipping. The trace writer is
// never clipped.
func WithLogLimit(n int) Option {
	return func(c *Codec) {
		c.limit = n
	}
}

// NewCodec returns a codec speaking over t.
func NewCodec(t transport.Transport, opts ...Option) *Codec {
	c := &Codec{t: t, limit: DefaultLogLimit, clip: truncate.New(truncate.FromMiddle)}
	for _, opt := range opts {
		opt(c)
	}
	if c.ids == nil {
		c.ids = NewCounter(DefaultPrefix(uuid.NewString()))
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Transport returns the underlying transport.
func (c *Codec) Transport() transport.Transport {
	return c.t
}

// Exec runs cmd in the shell and waits for its reply.
//
// A Tcl error yields both the Response and a *EvalError. Transport and
// framing failures return a nil Response. If ctx ends while the reply is
// pending the transport is closed, since the stream can no longer be
// resynchronized.
func (c *Codec) Exec(ctx context.Context, cmd string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := NewSentinels(c.ids.Next())
	c.logger.Debug("tcl send", slog.String("id", s.ID), c.attr("command", cmd))
	c.tracef("<<<", cmd)

	stop := context.AfterFunc(ctx, func() {
		c.logger.Warn("request cancelled, closing shell",
			slog.String("id", s.ID),
			slog.Any("error", ctx.Err()))
		_ = c.t.Close()
	})

	resp, err := c.roundTrip(s, cmd)
	if !stop() {
		return nil, &transport.Error{Op: "exec", Err: ctx.Err()}
	}
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		c.logger.Debug("tcl error",
			slog.String("id", s.ID),
			slog.Int("code", resp.Code),
			c.attr("message", resp.Message),
			slog.Any("error_code", resp.ErrorCode))
		return resp, newEvalError(cmd, resp)
	}
	return resp, nil
}

func (c *Codec) roundTrip(s Sentinels, cmd string) (*Response, error) {
	if err := c.t.Send(Wrap(s, cmd)); err != nil {
		return nil, err
	}
	return c.read(s)
}

// Wrap builds the single-line script that runs cmd and reports its outcome
// between the sentinels in s. The error classification comes from catch's
// options dict, never from ::errorCode, which may belong to an earlier
// request.
func Wrap(s Sentinels, cmd string) string {
	ret, res, opt := s.ID+"_RET", s.ID+"_RES", s.ID+"_OPT"
	middle := "{" + s.Middle + "}"
	return strings.Join([]string{
		"puts {" + s.Start + "}",
		"set " + ret + " [catch {eval " + quote.Quote(cmd) + "} " + res + " " + opt + "]",
		"if {$" + ret + " != 0} {" +
			"set " + opt + " [dict merge {-errorcode NONE -errorinfo {}} $" + opt + "]; " +
			"puts [list " + middle + " $" + ret + " $" + res +
			" [dict get $" + opt + " -errorcode] [dict get $" + opt + " -errorinfo]]" +
			"} else {" +
			"puts [list " + middle + " $" + ret + " $" + res + "]" +
			"}",
		"unset -nocomplain " + ret + " " + res + " " + opt,
		"puts {" + s.End + "}",
		"flush stdout",
	}, "; ")
}

// read decodes one reply. The start line is printed by a bare puts, so a
// trailing "\r" on it means the shell writes CRLF line endings; only then is
// one "\r" stripped from every following line.
func (c *Codec) read(s Sentinels) (*Response, error) {
	var crlf bool
	for {
		line, err := c.receive()
		if err != nil {
			return nil, err
		}
		if strings.HasSuffix(strings.TrimSpace(line), s.Start) {
			crlf = strings.HasSuffix(line, "\r")
			break
		}
		c.logger.Debug("discarding output before start sentinel",
			slog.String("id", s.ID),
			c.attr("line", line))
	}

	next := func() (string, error) {
		line, err := c.receive()
		if crlf {
			line = strings.TrimSuffix(line, "\r")
		}
		return line, err
	}

	var out strings.Builder
	var trailer []string
	for {
		line, err := next()
		if err != nil {
			return nil, err
		}
		if i := strings.Index(line, s.Middle); i >= 0 {
			out.WriteString(line[:i])
			trailer = append(trailer, line[i:])
			break
		}
		if isEnd(line, s.End) {
			return nil, framingError("end sentinel %s before middle sentinel", s.ID)
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}

	for {
		line, err := next()
		if err != nil {
			return nil, err
		}
		if isEnd(line, s.End) {
			break
		}
		trailer = append(trailer, line)
	}

	resp, err := decodeTrailer(s, strings.Join(trailer, "\n"))
	if err != nil {
		return nil, err
	}
	resp.Output = out.String()
	return resp, nil
}

func (c *Codec) receive() (string, error) {
	line, err := c.t.ReceiveLine()
	if err != nil {
		return "", err
	}
	c.tracef(">>>", line)
	return line, nil
}

// attr builds a string log attribute clipped to the log limit.
func (c *Codec) attr(key, value string) slog.Attr {
	if c.limit > 0 {
		value, _ = c.clip.Truncate(value, c.limit)
	}
	return slog.String(key, value)
}

func (c *Codec) tracef(dir, text string) {
	if c.trace != nil {
		_, _ = fmt.Fprintf(c.trace, "(tcl) %s %s\n", dir, text)
	}
}

func isEnd(line, end string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), end)
}

// decodeTrailer splits "MIDDLE code result" or
// "MIDDLE code message errorCode errorInfo".
func decodeTrailer(s Sentinels, trailer string) (*Response, error) {
	elems, err := tcllist.Split(trailer)
	if err != nil {
		return nil, &transport.Error{Op: "receive", Err: fmt.Errorf("%w: %w", ErrFraming, err)}
	}
	if len(elems) < 3 || elems[0] != s.Middle {
		return nil, framingError("bad trailer %q", trailer)
	}

	code, err := strconv.Atoi(elems[1])
	if err != nil {
		return nil, framingError("bad return code %q", elems[1])
	}

	resp := &Response{Code: code}
	if code == 0 {
		if len(elems) != 3 {
			return nil, framingError("bad trailer %q", trailer)
		}
		resp.Result = elems[2]
		return resp, nil
	}

	if len(elems) != 5 {
		return nil, framingError("bad error trailer %q", trailer)
	}
	resp.Message = elems[2]
	resp.ErrorInfo = elems[4]
	if ec, err := tcllist.Split(elems[3]); err == nil {
		resp.ErrorCode = ec
	} else {
		resp.ErrorCode = []string{elems[3]}
	}
	return resp, nil
}

func framingError(format string, args ...any) error {
	return &transport.Error{Op: "receive", Err: fmt.Errorf("%w: %s", ErrFraming, fmt.Sprintf(format, args...))}
}

// IsFraming reports whether err is a framing failure.
func IsFraming(err error) bool {
	return errors.Is(err, ErrFraming)
}
