package transport

import (
	"errors"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not found in PATH", name)
	}
}

func TestStart_NoCommand(t *testing.T) {
	_, err := Start(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCommand)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "start", terr.Op)
}

func TestStart_MissingBinary(t *testing.T) {
	_, err := Start(Config{Args: []string{"/nonexistent/definitely-not-a-shell"}})
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "start", terr.Op)
}

func TestProcess_EchoesLines(t *testing.T) {
	requireBinary(t, "cat")

	p, err := Start(Config{Args: []string{"cat"}})
	require.NoError(t, err)
	assert.Positive(t, p.Pid())

	require.NoError(t, p.Send("hello"))
	require.NoError(t, p.Send("second line"))

	line, err := p.ReceiveLine()
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	line, err = p.ReceiveLine()
	require.NoError(t, err)
	assert.Equal(t, "second line", line)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "second close is a no-op")
	assert.NoError(t, p.ExitError())

	assert.ErrorIs(t, p.Send("x"), ErrClosed)
	_, err = p.ReceiveLine()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestProcess_Env(t *testing.T) {
	requireBinary(t, "sh")

	p, err := Start(Config{
		Args:    []string{"sh", "-c", `echo "$QUARTUSTCL_TEST_VALUE"; pwd`},
		Env:     map[string]string{"QUARTUSTCL_TEST_VALUE": "from-env"},
		WorkDir: t.TempDir(),
	})
	require.NoError(t, err)
	defer p.Close()

	line, err := p.ReceiveLine()
	require.NoError(t, err)
	assert.Equal(t, "from-env", line)

	line, err = p.ReceiveLine()
	require.NoError(t, err)
	assert.NotEmpty(t, line)
}

func TestProcess_Exited(t *testing.T) {
	requireBinary(t, "sh")

	p, err := Start(Config{Args: []string{"sh", "-c", "echo bye; echo oops >&2"}})
	require.NoError(t, err)
	defer p.Close()

	line, err := p.ReceiveLine()
	require.NoError(t, err)
	assert.Equal(t, "bye", line)

	_, err = p.ReceiveLine()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcessExited)
	assert.False(t, errors.Is(err, ErrClosed))
}

func TestProcess_LongStderrLine(t *testing.T) {
	requireBinary(t, "sh")
	requireBinary(t, "head")
	requireBinary(t, "tr")

	script := "head -c 70000 /dev/zero | tr '\\0' x >&2; echo >&2; " +
		"head -c 300000 /dev/zero | tr '\\0' y >&2; echo ok"
	p, err := Start(Config{Args: []string{"sh", "-c", script}})
	require.NoError(t, err)
	defer p.Close()

	type result struct {
		line string
		err  error
	}
	got := make(chan result, 1)
	go func() {
		line, err := p.ReceiveLine()
		got <- result{line, err}
	}()

	select {
	case r := <-got:
		require.NoError(t, r.err)
		assert.Equal(t, "ok", r.line)
	case <-time.After(10 * time.Second):
		t.Fatal("ReceiveLine blocked while the shell wrote stderr")
	}
}

func TestProcess_KillsStuckShell(t *testing.T) {
	requireBinary(t, "sh")

	p, err := Start(Config{
		Args:        []string{"sh", "-c", "exec sleep 30"},
		KillTimeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, p.Close())
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Error(t, p.ExitError())
}

func TestPipe(t *testing.T) {
	shellOut, toClient := io.Pipe()
	fromClient, shellIn := io.Pipe()

	p := NewPipe(shellOut, shellIn)

	go func() {
		buf := make([]byte, 64)
		n, _ := fromClient.Read(buf)
		_, _ = toClient.Write([]byte("got " + string(buf[:n])))
		_, _ = toClient.Write([]byte("crlf\r\n"))
		_ = toClient.Close()
	}()

	require.NoError(t, p.Send("ping"))

	line, err := p.ReceiveLine()
	require.NoError(t, err)
	assert.Equal(t, "got ping", line)

	line, err = p.ReceiveLine()
	require.NoError(t, err)
	assert.Equal(t, "crlf\r", line)

	_, err = p.ReceiveLine()
	assert.ErrorIs(t, err, ErrProcessExited)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Send("x"), ErrClosed)
}

func TestPipe_CloseUnblocksReceive(t *testing.T) {
	shellOut, _ := io.Pipe()
	p := NewPipe(shellOut, io.Discard)

	errCh := make(chan error, 1)
	go func() {
		_, err := p.ReceiveLine()
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("ReceiveLine did not return after Close")
	}
}

func TestMock(t *testing.T) {
	m := NewMock(func(line string) []string {
		return []string{"echo: " + line}
	})
	m.Queue("banner")

	require.NoError(t, m.Send("a"))

	line, err := m.ReceiveLine()
	require.NoError(t, err)
	assert.Equal(t, "banner", line)

	line, err = m.ReceiveLine()
	require.NoError(t, err)
	assert.Equal(t, "echo: a", line)

	_, err = m.ReceiveLine()
	assert.ErrorIs(t, err, ErrProcessExited)

	assert.Equal(t, []string{"a"}, m.SentLines())

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Send("b"), ErrClosed)
	assert.Equal(t, 1, m.Closes)
}

func TestMock_SendError(t *testing.T) {
	boom := errors.New("broken pipe")
	m := NewMock(nil).WithSendError(boom)

	err := m.Send("x")
	assert.ErrorIs(t, err, boom)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "send", terr.Op)
	assert.Equal(t, "transport send: broken pipe", err.Error())
}
