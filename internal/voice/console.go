// Package voice implements the assistant's speak/listen collaborator on top
// of a line-oriented text stream, optionally voicing output through an
// external text-to-speech command.
package voice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultListenTimeout bounds how long Listen and Confirm wait for input.
const DefaultListenTimeout = 5 * time.Second

// Console reads user input line by line and writes assistant output.
type Console struct {
	out           io.Writer
	logger        *slog.Logger
	speakCommand  []string
	listenTimeout time.Duration

	outMu sync.Mutex
	lines chan string
	eof   chan struct{}
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the console logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) { c.logger = logger }
}

// WithSpeakCommand voices every spoken line through an external program,
// e.g. "espeak" or "say". The text is passed as the final argument.
func WithSpeakCommand(command string) Option {
	return func(c *Console) { c.speakCommand = strings.Fields(command) }
}

// WithListenTimeout sets the wait used by Confirm.
func WithListenTimeout(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.listenTimeout = d
		}
	}
}

// NewConsole starts reading lines from in. The reader goroutine ends when in
// reaches EOF.
func NewConsole(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		out:           out,
		logger:        slog.Default(),
		listenTimeout: DefaultListenTimeout,
		lines:         make(chan string),
		eof:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	defer close(c.eof)
	defer close(c.lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		c.lines <- sc.Text()
	}
	if err := sc.Err(); err != nil {
		c.logger.Warn("voice: input read failed", slog.String("error", err.Error()))
	}
}

// Speak writes text to the output and, when configured, voices it. Safe for
// concurrent use; reminders are announced from the scheduler goroutine.
func (c *Console) Speak(text string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	c.logger.Debug("voice: speaking", slog.String("text", text))
	if _, err := fmt.Fprintln(c.out, text); err != nil {
		c.logger.Error("voice: write failed", slog.String("error", err.Error()))
	}
	if len(c.speakCommand) == 0 {
		return
	}
	args := append(append([]string(nil), c.speakCommand[1:]...), text)
	if err := exec.Command(c.speakCommand[0], args...).Run(); err != nil {
		c.logger.Error("voice: speak command failed",
			slog.String("command", c.speakCommand[0]),
			slog.String("error", err.Error()))
	}
}

// Listen waits up to timeout for one line of input and returns it lowercased
// and trimmed. ok is false on timeout, on a blank line, on cancellation and
// once the input is exhausted.
func (c *Console) Listen(ctx context.Context, timeout time.Duration) (string, bool) {
	if timeout <= 0 {
		timeout = c.listenTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", false
	case <-timer.C:
		c.logger.Debug("voice: listening timed out")
		return "", false
	case line, open := <-c.lines:
		if !open {
			return "", false
		}
		text := strings.ToLower(strings.TrimSpace(line))
		if text == "" {
			return "", false
		}
		c.logger.Info("voice: recognized", slog.String("text", text))
		return text, true
	}
}

// Confirm asks a yes/no question about prompt and reports whether the answer
// contains "yes".
func (c *Console) Confirm(ctx context.Context, prompt string) bool {
	c.Speak(fmt.Sprintf("Do you want me to %s? Please say yes or no.", prompt))
	answer, ok := c.Listen(ctx, c.listenTimeout)
	return ok && strings.Contains(answer, "yes")
}

// Done is closed once the input stream is exhausted and every line has been
// consumed.
func (c *Console) Done() <-chan struct{} {
	return c.eof
}
