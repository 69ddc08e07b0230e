package dialog

// Event is one inbound message. Photo carries the transport's reference to the largest
// image size when the message is a photo; Text then holds the caption, if any.
type Event struct {
	UserID string
	Text   string
	Photo  string
}

// IsPhoto reports whether the event carries an image.
func (e Event) IsPhoto() bool {
	return e.Photo != ""
}

// Reply is one outbound message. Text may use the HTML subset Telegram understands
// (<b>, <i>). When Photo is set the adapter sends the image with Text as caption.
type Reply struct {
	Text           string
	Photo          string
	Keyboard       [][]string
	RemoveKeyboard bool
}

// Keyboard layouts shared by several replies.
var (
	mainKeyboard = [][]string{
		{"/entradas", "/adicionar_saldo"},
		{"/despesas", "/relatorios"},
		{"/ajuda", "/cancelar"},
	}
	incomeMenuKeyboard = [][]string{
		{"/consultar_saldo", "/adicionar_saldo"},
		{"/listar_cat_entrada", "/adicionar_cat_entrada"},
		{"/remover_cat_entrada", "/voltar"},
	}
	expenseMenuKeyboard = [][]string{
		{"/adicionar_despesas", "/listar_cat_despesas"},
		{"/adicionar_cat_despesas", "/remover_cat_despesas"},
		{"/voltar"},
	}
	reportMenuKeyboard = [][]string{
		{"/relatorio_entradas", "/relatorio_despesas"},
		{"/voltar"},
	}
	yesNoKeyboard = [][]string{
		{"SIM", "NÃO"},
		{"/cancelar"},
	}
	noFilterKeyboard = [][]string{
		{"SEM FILTROS"},
		{"/cancelar"},
	}
)

// choiceKeyboard renders one button per option followed by extra rows.
func choiceKeyboard(options []string, extra ...[]string) [][]string {
	rows := make([][]string, 0, len(options)+len(extra))
	for _, o := range options {
		rows = append(rows, []string{o})
	}
	return append(rows, extra...)
}

func text(s string) Reply {
	return Reply{Text: s}
}

func withKeyboard(s string, kb [][]string) Reply {
	return Reply{Text: s, Keyboard: kb}
}

func clearKeyboard(s string) Reply {
	return Reply{Text: s, RemoveKeyboard: true}
}
