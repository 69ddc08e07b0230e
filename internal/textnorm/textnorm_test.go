package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "accent and case", input: "Café", want: "CAFE"},
		{name: "already canonical", input: "CAFE", want: "CAFE"},
		{name: "cedilla and tilde", input: "alimentação", want: "ALIMENTACAO"},
		{name: "keeps spaces", input: "Não sei", want: "NAO SEI"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Café", "ÁÉÍÓÚ", "mercado", "São Paulo", "ROUPAS", "çÇ"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
	assert.Equal(t, Normalize("Café"), Normalize("CAFE"))
}

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("mercado", "MERCADO"))
	assert.True(t, EqualFold("Salário", "SALARIO"))
	assert.False(t, EqualFold("mercado", "roupas"))
}

func TestIsValidCategory(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{input: "MERCADO", valid: true},
		{input: "100", valid: false},
		{input: "100,50", valid: false},
		{input: "1.000,00", valid: false},
		{input: "10 reais", valid: true},
		{input: "R2D2", valid: true},
		{input: "", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidCategory(tt.input))
		})
	}
}

func TestIndexOf(t *testing.T) {
	list := []string{"TRANSPORTE", "Mercado", "Saúde"}
	assert.Equal(t, 1, IndexOf(list, "mercado"))
	assert.Equal(t, 2, IndexOf(list, "SAUDE"))
	assert.Equal(t, -1, IndexOf(list, "lazer"))
}
