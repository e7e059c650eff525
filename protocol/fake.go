package protocol

import (
	"strconv"
	"strings"
	"sync"

	"github.com/randalmurphal/quartustcl/quote"
	"github.com/randalmurphal/quartustcl/tcllist"
	"github.com/randalmurphal/quartustcl/transport"
)

// Reply is what a FakeShell handler wants the shell to report.
type Reply struct {
	Output    string // printed before the trailer; may lack a final newline
	Code      int
	Result    string // the result, or the error message when Code != 0
	ErrorCode []string
	ErrorInfo string
}

// Handler answers one unwrapped command.
type Handler func(cmd string) Reply

// FakeShell is a Transport that understands the wrapping produced by Wrap
// and answers with a Handler. Lines that are not wrapped commands produce
// no output. It is meant for tests.
type FakeShell struct {
	*transport.Mock

	mu       sync.Mutex
	handler  Handler
	commands []string
}

var _ transport.Transport = (*FakeShell)(nil)

// NewFakeShell creates a fake shell answering with h.
func NewFakeShell(h Handler) *FakeShell {
	f := &FakeShell{handler: h}
	f.Mock = transport.NewMock(f.respond)
	return f
}

// Commands returns the unwrapped commands received so far.
func (f *FakeShell) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func (f *FakeShell) respond(line string) []string {
	s, cmd, ok := Unwrap(line)
	if !ok {
		return nil
	}

	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()

	r := f.handler(cmd)
	return strings.Split(s.Start+"\n"+r.Output+r.trailer(s)+"\n"+s.End, "\n")
}

func (r Reply) trailer(s Sentinels) string {
	code := strconv.Itoa(r.Code)
	if r.Code == 0 {
		return tcllist.Format(s.Middle, code, r.Result)
	}
	errorCode := r.ErrorCode
	if len(errorCode) == 0 {
		errorCode = []string{"NONE"}
	}
	return tcllist.Format(s.Middle, code, r.Result, tcllist.Format(errorCode...), r.ErrorInfo)
}

// Unwrap recovers the sentinels and the original command from a line built
// by Wrap.
func Unwrap(line string) (Sentinels, string, bool) {
	const startPrefix, startSuffix = "puts {", "_START}; "
	if !strings.HasPrefix(line, startPrefix) {
		return Sentinels{}, "", false
	}
	end := strings.Index(line, startSuffix)
	if end < 0 {
		return Sentinels{}, "", false
	}
	s := NewSentinels(line[len(startPrefix):end])

	head := "set " + s.ID + "_RET [catch {eval "
	tail := "} " + s.ID + "_RES " + s.ID + "_OPT]; if "
	i := strings.Index(line, head)
	j := strings.LastIndex(line, tail)
	if i < 0 || j < i+len(head) {
		return Sentinels{}, "", false
	}
	cmd, err := quote.Unquote(line[i+len(head) : j])
	if err != nil {
		return Sentinels{}, "", false
	}
	return s, cmd, true
}
