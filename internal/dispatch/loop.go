package dispatch

import (
	"context"
	"log/slog"
	"strings"
)

// HelpText lists what the assistant understands.
const HelpText = `I can help you with:
- Setting reminders (e.g., "remind me at 4pm to water the plants")
  Supported time formats:
  - 12-hour format: 4pm, 4:00pm, 4:00 pm, 4:00, 4 PM
  - 24-hour format: 16:00, 16
- Listing your reminders ("list my reminders")
- Cleaning your desktop and downloads folder
- Creating, opening and searching notes
- Opening PDF files

You can also say "stop", "exit", "quit", or "goodbye" to end the session.

Just tell me what you'd like me to do!`

var terminal = map[string]struct{}{
	"stop":    {},
	"exit":    {},
	"quit":    {},
	"goodbye": {},
}

// IsTerminal reports whether command ends the session.
func IsTerminal(command string) bool {
	_, ok := terminal[strings.ToLower(strings.TrimSpace(command))]
	return ok
}

// Session is a Voice whose input can run dry.
type Session interface {
	Voice
	Done() <-chan struct{}
}

// Loop runs the foreground command loop until the user says a terminal
// phrase, the input is exhausted or ctx is cancelled.
func (d *Dispatcher) Loop(ctx context.Context, s Session) error {
	s.Speak("Hello! I'm your desk assistant. How can I help you today?")
	prompt := true
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if prompt {
			s.Speak("Listening for your command...")
		}
		command, ok := s.Listen(ctx, d.listenTimeout)
		prompt = ok
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-s.Done():
				d.logger.Info("dispatch: input closed")
				return nil
			default:
			}
			continue
		}
		if IsTerminal(command) {
			s.Speak("Goodbye! Have a great day!")
			return nil
		}
		handled := d.Dispatch(ctx, command)
		d.logger.Info("dispatch: command", slog.String("command", command), slog.Bool("handled", handled))
	}
}
