package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finfacil/internal/dialog"
)

type recordingHandler struct {
	err     error
	replies map[string][]dialog.Reply
	events  []dialog.Event
}

func (h *recordingHandler) Handle(_ context.Context, ev dialog.Event) ([]dialog.Reply, error) {
	h.events = append(h.events, ev)
	if h.err != nil {
		return nil, h.err
	}
	return h.replies[ev.Text], nil
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		want  dialog.Event
		valid bool
	}{
		{
			name:  "plain text",
			line:  "/consultar_saldo",
			want:  dialog.Event{UserID: "console", Text: "/consultar_saldo"},
			valid: true,
		},
		{
			name:  "photo reference",
			line:  "/foto recibo-1",
			want:  dialog.Event{UserID: "console", Photo: "recibo-1"},
			valid: true,
		},
		{
			name:  "photo with caption",
			line:  "/FOTO recibo-2 nota do mercado",
			want:  dialog.Event{UserID: "console", Photo: "recibo-2", Text: "nota do mercado"},
			valid: true,
		},
		{
			name: "photo without reference",
			line: "/foto",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseInput("console", tt.line)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderReply(t *testing.T) {
	out := RenderReply(dialog.Reply{
		Text:     "<b>Escolha</b> &#39;SIM&#39;",
		Keyboard: [][]string{{"SIM", "NÃO"}, {"/cancelar"}},
	})
	assert.Contains(t, out, "Escolha 'SIM'")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "[ SIM | NÃO ]")
	assert.Contains(t, out, "[ /cancelar ]")

	photo := RenderReply(dialog.Reply{Text: "ID: 3", Photo: "file-9"})
	assert.Contains(t, photo, "[comprovante file-9]")
	assert.Contains(t, photo, "ID: 3")
}

func TestConsole_Run(t *testing.T) {
	handler := &recordingHandler{replies: map[string][]dialog.Reply{
		"/consultar_saldo": {{Text: "Seu saldo atual é: R$ 10.00"}},
	}}
	input := strings.NewReader("/consultar_saldo\n\n/foto abc\n/foto\n/sair\n/nunca\n")
	var output bytes.Buffer

	err := NewConsole(handler, input, &output, "console").Run(context.Background())
	require.NoError(t, err)

	require.Len(t, handler.events, 2)
	assert.Equal(t, "/consultar_saldo", handler.events[0].Text)
	assert.Equal(t, "abc", handler.events[1].Photo)

	out := output.String()
	assert.Contains(t, out, "R$ 10.00")
	assert.Contains(t, out, "Uso: /foto")
}

func TestConsole_RunStopsAtEOF(t *testing.T) {
	handler := &recordingHandler{}
	var output bytes.Buffer

	err := NewConsole(handler, strings.NewReader("/start"), &output, "console").Run(context.Background())
	require.NoError(t, err)
	require.Len(t, handler.events, 1)
}

func TestConsole_HandlerErrorShowsGenericReply(t *testing.T) {
	handler := &recordingHandler{err: errors.New("disk full")}
	var output bytes.Buffer

	err := NewConsole(handler, strings.NewReader("100\n"), &output, "console").Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, output.String(), dialog.ErrorReply().Text)
}

func TestConsole_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var output bytes.Buffer
	err := NewConsole(&recordingHandler{}, strings.NewReader("/start\n"), &output, "console").Run(ctx)
	assert.NoError(t, err)
}
