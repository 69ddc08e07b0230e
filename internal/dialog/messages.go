package dialog

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finfacil/internal/model"
)

const commandList = "• /start - Iniciar bot\n" +
	"• /ajuda - Ver comandos\n" +
	"• /entradas - Menu de entradas\n" +
	"• /despesas - Menu de despesas\n" +
	"• /relatorios - Gerar relatórios\n" +
	"• /cancelar - Cancelar operação atual"

// Fixed texts.
const (
	msgGenericError    = "Ocorreu um erro. Tente novamente."
	msgCancelled       = "Operação cancelada."
	msgFlowDiscarded   = "⚠️ A operação anterior foi descartada."
	msgUnknownCommand  = "Comando não reconhecido. Use /ajuda para ver os comandos."
	msgNoActiveDialog  = "Não entendi. Use /ajuda para ver os comandos disponíveis."
	msgExpectText      = "Responda com uma mensagem de texto ou /cancelar."
	msgExpectPhoto     = "📸 Por favor, envie a foto do comprovante ou /cancelar."
	msgPhotoReceived   = "📎 Comprovante recebido."
	msgAskIncomeAmount = "Qual valor deseja adicionar ao saldo? Ex: 300 ou 300,50"
	msgAskExpenseValue = "Tudo bem! 💸\nVamos lá, qual o valor da despesa?"
	msgAmountInvalid   = "❌ Valor inválido. Digite um número, ex: 300,50"
	msgAmountNotPos    = "❌ O valor precisa ser maior que 0. Tente novamente:"
	msgAskNote         = "Digite uma observação ou 'NADA' para pular:"
	msgAskDate         = "Informe a data (dd/mm/yyyy). Exemplo: 01/01/2024"
	msgDateInvalid     = "⚠️ Data inválida. Utilize o formato dd/mm/yyyy ou /cancelar."
	msgDateFuture      = "⚠️ A data não pode ser futura. Informe uma data válida (dd/mm/yyyy):"
	msgAskAttachment   = "Gostaria de adicionar um comprovante? (SIM/NÃO)"
	msgAttachmentBad   = "⚠️ Responda apenas SIM ou NÃO."
	msgConfirmBad      = "❌ <b>Resposta inválida!</b> Digite <b>SIM</b> para confirmar ou <b>NÃO</b> para cancelar."
	msgReservedName    = "🚫 <b>A categoria 'GERAL' não pode ser criada!</b>\nEscolha outro nome."
	msgNumericName     = "❌ <b>Entrada inválida!</b> Digite o nome de uma categoria válida ou /cancelar."
	msgAskStartDate    = "📆 Digite a data inicial (dd/mm/yyyy) ou clique em 'SEM FILTROS' para não filtrar."
	msgAskEndDate      = "Agora, informe a data final (dd/mm/yyyy) ou clique em 'SEM FILTROS' para não filtrar:"
	msgNoIncomeFound   = "Nenhuma entrada encontrada para este período/categoria."
	msgNoExpenseFound  = "Nenhuma despesa encontrada para o período e categoria informados."
	msgReportDone      = "Relatório finalizado. Use /ajuda para ver os comandos."
	msgNoAttachments   = "Nenhuma despesa deste relatório possui comprovante."
	msgBrowseFirst     = "Gostaria de visualizar comprovantes?\nSelecione o ID abaixo ou digite vários separados por vírgula. Ex: 1,2,3\nSe não quiser, clique em 'NÃO'."
	msgBrowseAgain     = "Gostaria de ver mais algum comprovante? Se sim, selecione ou digite o ID. Caso contrário, clique em 'NÃO'."
	msgBrowseRetry     = "Selecione o ID abaixo ou digite vários separados por vírgula. Se não quiser, clique em 'NÃO'."
	msgBrowseExhausted = "Todos os comprovantes solicitados foram exibidos. Use /ajuda para ver os comandos."
)

func escape(s string) string {
	return html.EscapeString(s)
}

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// sortedLines renders a category list one per line in ascending order.
func sortedLines(list []string) string {
	return escapeLines(sortedCopy(list))
}

func escapeLines(list []string) string {
	lines := make([]string, len(list))
	for i, c := range list {
		lines[i] = escape(c)
	}
	return strings.Join(lines, "\n")
}

func helpReply() Reply {
	return withKeyboard("📌 <b>Comandos disponíveis:</b>\n\n"+commandList, mainKeyboard)
}

func greetingReply(returning bool) Reply {
	if returning {
		return withKeyboard("Que bom te ver novamente! 🎉\nSeja bem-vindo ao FinFácil. 💰\n\n"+commandList, mainKeyboard)
	}
	return withKeyboard("Olá! Eu sou o FinFácil. 🏦💰\n\nSou seu assistente financeiro virtual.\n\n"+commandList, mainKeyboard)
}

func incomeMenuReply() Reply {
	return withKeyboard("💰 <b>Menu de Entradas:</b>\n\n"+
		"• /consultar_saldo - Ver saldo atual\n"+
		"• /adicionar_saldo - Adicionar entrada de saldo\n"+
		"• /listar_cat_entrada - Listar categorias de entrada\n"+
		"• /adicionar_cat_entrada - Adicionar categoria de entrada\n"+
		"• /remover_cat_entrada - Remover categoria de entrada\n"+
		"• /voltar - Voltar ao menu principal", incomeMenuKeyboard)
}

func expenseMenuReply() Reply {
	return withKeyboard("📋 <b>Menu de Despesas:</b>\n\n"+
		"• /adicionar_despesas - Adicionar uma despesa\n"+
		"• /listar_cat_despesas - Listar suas categorias\n"+
		"• /adicionar_cat_despesas - Adicionar uma categoria\n"+
		"• /remover_cat_despesas - Remover uma categoria\n"+
		"• /voltar - Voltar ao menu principal", expenseMenuKeyboard)
}

func reportMenuReply() Reply {
	return withKeyboard("Escolha o tipo de relatório:\n\n"+
		"/relatorio_entradas - Relatório de entradas\n"+
		"/relatorio_despesas - Relatório de despesas", reportMenuKeyboard)
}

func balanceReply(balance decimal.Decimal) Reply {
	return text("💰 Seu saldo atual é: " + money(balance))
}

func categoryListReply(ns model.CategoryType, list []string) Reply {
	title := "📂 <b>Suas categorias de despesa:</b>\n"
	if ns == model.CategoryTypeIncome {
		title = "📂 <b>Suas categorias de entrada:</b>\n"
	}
	return text(title + sortedLines(list))
}

func incomeCategoryPrompt(list []string) Reply {
	return withKeyboard("Escolha a categoria desta entrada:\n"+sortedLines(list),
		choiceKeyboard(list, []string{"/cancelar"}))
}

func incomeCategoryInvalid() Reply {
	return text("Categoria inválida! Tente novamente ou /cancelar.")
}

func expenseCategoryPrompt(list []string) Reply {
	sorted := sortedCopy(list)
	return withKeyboard("Em qual categoria essa despesa se encaixa? 🗃️\n"+escapeLines(sorted)+
		"\n\nPara adicionar uma nova categoria, utilize <b>/adicionar_cat_despesas</b>.",
		choiceKeyboard(sorted, []string{"/cancelar"}))
}

func expenseCategoryInvalid() Reply {
	return text("❌ <b>Categoria não encontrada. Tente novamente.</b>\n\n" +
		"Para adicioná-la, use <b>/adicionar_cat_despesas</b> ou <b>/cancelar</b> para parar a operação.")
}

func incomeCommitted(rec model.IncomeRecord, balance decimal.Decimal) Reply {
	return clearKeyboard(fmt.Sprintf("✅ Entrada registrada!\nValor: %s\nCategoria: %s\nData: %s\nObs: %s\n\n💰 Novo saldo: %s",
		money(rec.Amount), escape(rec.Category), rec.Date, escape(rec.Note), money(balance)))
}

func expenseCommitted(rec model.ExpenseRecord, balance decimal.Decimal) Reply {
	return clearKeyboard(fmt.Sprintf("✅ Despesa registrada com sucesso!\n<b>ID: %d\nSeu novo saldo: %s</b>\n\nPosso ajudar em mais alguma coisa?",
		rec.ID, money(balance)))
}

func addCategoryPrompt(ns model.CategoryType, list []string) Reply {
	title := "📥 <b>Digite o nome da categoria a adicionar:</b>"
	if ns == model.CategoryTypeIncome {
		title = "📥 <b>Digite o nome da categoria de entrada a adicionar:</b>"
	}
	return clearKeyboard(title + "\n\nSuas categorias atuais:\n" + sortedLines(list))
}

func categoryExists(list []string) Reply {
	return text("❌ <b>Essa categoria já existe!</b> Digite outro nome ou /cancelar.\n\nSuas categorias atuais:\n" + sortedLines(list))
}

func categoryAdded(name string, list []string) Reply {
	return text(fmt.Sprintf("✅ <b>Categoria '%s' adicionada com sucesso!</b> 🎉\n\nSuas categorias atualizadas:\n%s",
		escape(name), sortedLines(list)))
}

func removeCategoryPrompt(ns model.CategoryType, list []string) Reply {
	title := "✂️ <b>Digite o nome da categoria a remover:</b>"
	if ns == model.CategoryTypeIncome {
		title = "✂️ <b>Digite o nome da categoria de entrada a remover:</b>"
	}
	return withKeyboard(title+"\nSuas categorias:\n"+sortedLines(list),
		choiceKeyboard(sortedCopy(list), []string{"/cancelar"}))
}

func categoryNotFound() Reply {
	return text("❌ <b>Categoria não encontrada!</b> Digite um nome válido ou /cancelar.")
}

func confirmExpenseRemoval(category string, count int) Reply {
	return withKeyboard(fmt.Sprintf("⚠️ <b>A categoria '%s' possui %d despesas cadastradas!</b>\n"+
		"Essa ação apagará também esses registros.\n\n"+
		"Digite <b>SIM</b> para confirmar ou <b>NÃO</b> para cancelar.", escape(category), count), yesNoKeyboard)
}

func confirmIncomeRemoval(category string) Reply {
	return withKeyboard(fmt.Sprintf("⚠️ Remover a categoria de entrada '<b>%s</b>'?\n"+
		"As entradas já registradas nela serão mantidas.\n\n"+
		"Digite <b>SIM</b> para confirmar ou <b>NÃO</b> para cancelar.", escape(category)), yesNoKeyboard)
}

func categoryRemoved(category string, list []string) Reply {
	return clearKeyboard(fmt.Sprintf("✅ <b>Categoria '%s' removida com sucesso!</b>\n\nSuas categorias atuais:\n%s",
		escape(category), sortedLines(list)))
}

func categoryRemovedWithExpenses(category string, removed int) Reply {
	return clearKeyboard(fmt.Sprintf("✅ <b>Categoria '%s' e suas %d despesas associadas foram removidas!</b>",
		escape(category), removed))
}

func reportCategoryPrompt(ns model.CategoryType, list []string) Reply {
	title := "📊 <b>Para gerar o relatório:</b>\n"
	if ns == model.CategoryTypeIncome {
		title = "📊 <b>Relatório de Entradas:</b>\n\n"
	}
	return withKeyboard(title+
		"• Digite o nome de uma categoria ou 'GERAL' para todas.\n\n"+
		"Suas categorias:\n"+escapeLines(list)+
		"\n\nDigite /cancelar para parar a operação.",
		choiceKeyboard(list, []string{model.AllCategories}, []string{"/cancelar"}))
}

func reportCategoryInvalid(list []string) Reply {
	return text("❌ <b>Categoria não encontrada!</b> Digite uma categoria existente ou 'GERAL'.\n\n" +
		"Suas categorias:\n" + escapeLines(list) + "\n\nOu /cancelar para parar.")
}

func incomeReport(records []model.IncomeRecord) Reply {
	var b strings.Builder
	b.WriteString("📊 <b>Relatório de Entradas:</b>\n\n")
	for _, r := range records {
		fmt.Fprintf(&b, "• ID: %d\n  Valor: %s\n  Categoria: %s\n  Data: %s\n",
			r.ID, money(r.Amount), escape(r.Category), escape(r.Date))
		if r.Note != "" {
			fmt.Fprintf(&b, "  Obs: %s\n", escape(r.Note))
		}
		b.WriteString("------------------------\n")
	}
	return clearKeyboard(b.String())
}

func expenseReport(records []model.ExpenseRecord) Reply {
	var b strings.Builder
	b.WriteString("📊 <b>Relatório de Despesas:</b>\n\n")
	for _, r := range records {
		fmt.Fprintf(&b, "• ID: %d\n  Valor: %s\n  Categoria: %s\n  Data: %s\n",
			r.ID, money(r.Amount), escape(r.Category), escape(r.Date))
		if r.Note != "" {
			fmt.Fprintf(&b, "  Obs: %s\n", escape(r.Note))
		}
		receipt := "Não"
		if r.HasAttachment() {
			receipt = "Sim"
		}
		fmt.Fprintf(&b, "  Comprovante: %s\n", receipt)
		b.WriteString("------------------------\n")
	}
	return clearKeyboard(b.String())
}

func browseKeyboard(ids []int) [][]string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = fmt.Sprint(id)
	}
	return choiceKeyboard(labels, []string{"NÃO", "/cancelar"})
}

func attachmentCaption(id int) string {
	return fmt.Sprintf("Comprovante da despesa ID %d", id)
}

func unknownAttachmentIDs(ids []string) Reply {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = escape(id)
	}
	return text("Não encontrei comprovante(s) para ID(s): " + strings.Join(escaped, ", "))
}

func sortedCopy(list []string) []string {
	sorted := slices.Clone(list)
	slices.Sort(sorted)
	return sorted
}
