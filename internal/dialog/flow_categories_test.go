package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finfacil/internal/model"
)

func TestAddExpenseCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.send(t, "/adicionar_cat_despesas")

	replies := env.send(t, "mercado")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Essa categoria já existe")

	replies = env.send(t, "Lazer")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[0].Text, "Categoria 'LAZER' adicionada")

	list, err := env.categories.PeekCategories(ctx, testUser, model.CategoryTypeExpense)
	require.NoError(t, err)
	assert.Equal(t, []string{"TRANSPORTE", "MERCADO", "ROUPAS", "LAZER"}, list)
}

func TestAddIncomeCategoryKeepsSpelling(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, "/adicionar_cat_entrada")
	replies := env.send(t, "Dividendos")
	assert.Contains(t, replies[0].Text, "Categoria 'Dividendos' adicionada")

	replies = env.send(t, "/adicionar_cat_entrada")
	require.Len(t, replies, 1)
	replies = env.send(t, "DIVIDENDOS")
	assert.Contains(t, replies[0].Text, "Essa categoria já existe")

	list, err := env.categories.PeekCategories(context.Background(), testUser, model.CategoryTypeIncome)
	require.NoError(t, err)
	assert.Equal(t, []string{"SALARIO", "EXTRAS", "Dividendos"}, list)
}

func TestRemoveExpenseCategory(t *testing.T) {
	tests := []struct {
		name         string
		answers      []string
		wantCategory bool
		wantExpenses int
	}{
		{name: "confirmed removal cascades", answers: []string{"SIM"}, wantCategory: false, wantExpenses: 1},
		{name: "declined removal keeps everything", answers: []string{"não"}, wantCategory: true, wantExpenses: 3},
		{name: "invalid answer then confirm", answers: []string{"talvez", "sim"}, wantCategory: false, wantExpenses: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			require.NoError(t, env.categories.SetCategories(ctx, testUser, model.CategoryTypeExpense,
				[]string{"TRANSPORTE", "MERCADO", "ROUPAS", "SAUDE"}))
			env.addExpense(t, "SAUDE", "01/06/2024", "")
			env.addExpense(t, "MERCADO", "02/06/2024", "")
			env.addExpense(t, "SAUDE", "03/06/2024", "")

			env.send(t, "/remover_cat_despesas")
			replies := env.send(t, "Saúde")
			require.Len(t, replies, 1)
			assert.Contains(t, replies[0].Text, "possui 2 despesas")

			for _, answer := range tt.answers {
				env.send(t, answer)
			}
			flow, _ := env.step(t)
			assert.Equal(t, FlowNone, flow)

			list, err := env.categories.PeekCategories(ctx, testUser, model.CategoryTypeExpense)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, contains(list, "SAUDE"))

			records, err := env.ledger.ExpenseRecords(ctx, testUser)
			require.NoError(t, err)
			assert.Len(t, records, tt.wantExpenses)
		})
	}
}

func TestRemoveExpenseCategory_InvalidAnswerReprompts(t *testing.T) {
	env := newTestEnv(t)
	env.addExpense(t, "ROUPAS", "01/06/2024", "")

	env.send(t, "/remover_cat_despesas")
	env.send(t, "roupas")

	replies := env.send(t, "talvez")
	require.Len(t, replies, 1)
	assert.Equal(t, msgConfirmBad, replies[0].Text)
	_, step := env.step(t)
	assert.Equal(t, StepConfirmRemoval, step)
}

func TestRemoveExpenseCategory_WithoutExpensesSkipsConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.categories.SetCategories(ctx, testUser, model.CategoryTypeExpense,
		[]string{"TRANSPORTE", "MERCADO", "ROUPAS", "PETS"}))

	env.send(t, "/remover_cat_despesas")

	replies := env.send(t, "cinema")
	assert.Contains(t, replies[0].Text, "Categoria não encontrada")

	replies = env.send(t, "pets")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[0].Text, "Categoria 'PETS' removida")

	list, err := env.categories.PeekCategories(ctx, testUser, model.CategoryTypeExpense)
	require.NoError(t, err)
	assert.Equal(t, []string{"TRANSPORTE", "MERCADO", "ROUPAS"}, list)
}

func TestRemoveDefaultCategoryIsRestoredOnNextRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.send(t, "/remover_cat_despesas")
	env.send(t, "ROUPAS")

	peek, err := env.categories.PeekCategories(ctx, testUser, model.CategoryTypeExpense)
	require.NoError(t, err)
	assert.NotContains(t, peek, "ROUPAS")

	replies := env.send(t, "/listar_cat_despesas")
	assert.Contains(t, replies[0].Text, "ROUPAS")
}

func TestRemoveIncomeCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.categories.SetCategories(ctx, testUser, model.CategoryTypeIncome,
		[]string{"SALARIO", "EXTRAS", "Aluguéis"}))

	env.send(t, "/adicionar_saldo")
	env.send(t, "1500")
	env.send(t, "alugueis")
	env.send(t, "NADA")
	env.send(t, "01/06/2024")

	env.send(t, "/remover_cat_entrada")
	replies := env.send(t, "ALUGUEIS")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Aluguéis")
	assert.Equal(t, yesNoKeyboard, replies[0].Keyboard)

	replies = env.send(t, "SIM")
	assert.Contains(t, replies[0].Text, "removida com sucesso")

	list, err := env.categories.PeekCategories(ctx, testUser, model.CategoryTypeIncome)
	require.NoError(t, err)
	assert.Equal(t, []string{"SALARIO", "EXTRAS"}, list)

	records, err := env.ledger.IncomeRecords(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, records, 1, "income removal never touches records")
	assert.Equal(t, "Aluguéis", records[0].Category)
}

func TestRemoveIncomeCategory_Declined(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, "/remover_cat_entrada")
	env.send(t, "extras")
	replies := env.send(t, "NAO")
	assert.Equal(t, msgCancelled, replies[0].Text)

	list, err := env.categories.PeekCategories(context.Background(), testUser, model.CategoryTypeIncome)
	require.NoError(t, err)
	assert.Contains(t, list, "EXTRAS")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
