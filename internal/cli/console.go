package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/finfacil/internal/common"
	"github.com/Veraticus/finfacil/internal/dialog"
)

const (
	quitCommand  = "/sair"
	photoCommand = "/foto"
)

// Handler turns one inbound event into replies.
type Handler interface {
	Handle(ctx context.Context, ev dialog.Event) ([]dialog.Reply, error)
}

// Console drives the dialog engine from a terminal as a single user.
type Console struct {
	handler Handler
	reader  *NonBlockingReader
	writer  io.Writer
	userID  string
}

// NewConsole creates a console session for userID.
func NewConsole(handler Handler, reader io.Reader, writer io.Writer, userID string) *Console {
	return &Console{
		handler: handler,
		reader:  NewNonBlockingReader(reader),
		writer:  writer,
		userID:  userID,
	}
}

// Run reads lines until EOF, /sair or cancellation.
func (c *Console) Run(ctx context.Context) error {
	c.printf("%s\n%s\n\n",
		FormatTitle("FinFácil"),
		FormatInfo(fmt.Sprintf("Digite %s para encerrar e %s <id> para enviar um comprovante.", quitCommand, photoCommand)))

	for {
		c.printf("%s", FormatPrompt(c.userID))

		line, err := c.reader.ReadLine(ctx)
		switch {
		case errors.Is(err, ErrInputCancelled), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		if line == "" {
			continue
		}
		if strings.EqualFold(line, quitCommand) {
			return nil
		}

		ev, ok := ParseInput(c.userID, line)
		if !ok {
			c.printf("%s\n", FormatWarning("Uso: "+photoCommand+" <id do comprovante>"))
			continue
		}

		replies, err := c.handler.Handle(ctx, ev)
		if err != nil {
			slog.Error("dialog failed", "user_id", c.userID, "error", err)
			replies = []dialog.Reply{dialog.ErrorReply()}
		}
		for _, r := range replies {
			c.printf("%s\n", RenderReply(r))
		}
	}
}

func (c *Console) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(c.writer, format, args...); err != nil {
		slog.Debug("failed to write console output", "error", err)
	}
}

// ParseInput converts a console line into an event. "/foto <id> [legenda]" sends a
// photo reference. It reports false when the photo id is missing.
func ParseInput(userID, line string) (dialog.Event, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.EqualFold(fields[0], photoCommand) {
		return dialog.Event{UserID: userID, Text: line}, true
	}
	if len(fields) < 2 {
		return dialog.Event{}, false
	}
	return dialog.Event{
		UserID: userID,
		Photo:  fields[1],
		Text:   strings.Join(fields[2:], " "),
	}, true
}

// RenderReply formats a reply as plain terminal text with keyboard hints.
func RenderReply(r dialog.Reply) string {
	var b strings.Builder

	if r.Photo != "" {
		b.WriteString(InfoStyle.Render(PhotoIcon + " [comprovante " + r.Photo + "]"))
		b.WriteString("\n")
	}
	b.WriteString(RenderBox(common.StripHTML(r.Text)))

	if len(r.Keyboard) > 0 {
		rows := make([]string, 0, len(r.Keyboard))
		for _, row := range r.Keyboard {
			rows = append(rows, "[ "+strings.Join(row, " | ")+" ]")
		}
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render(strings.Join(rows, " ")))
	}

	return b.String()
}
