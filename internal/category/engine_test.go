package category_test

import (
	"testing"

	"github.com/lfarias/meubolso/internal/category"
)

func TestCategorize_DefaultRules(t *testing.T) {
	engine := category.NewEngine(category.DefaultRules())

	cases := []struct {
		description string
		want        string
	}{
		{"COMPRA NO MERCADO CENTRAL", "Alimentação"},
		{"IFOOD *RESTAURANTE BOM", "Alimentação"},
		{"UBER TRIP SAO PAULO", "Transporte"},
		{"POSTO SHELL BR 101", "Transporte"},
		{"DROGARIA PACHECO 042", "Saúde"},
		{"NETFLIX.COM ASSINATURA MENSAL", "Entretenimento"},
		{"AMAZON MARKETPLACE", "Compras"},
		{"CONTA DE LUZ CEMIG", "Serviços"},
		{"SALARIO REF 09/2025", "Salário"},
		{"RESGATE TESOURO DIRETO", "Investimentos"},
		{"PIX JOAO DA SILVA", "Outros"},
		{"", "Outros"},
	}
	for _, tc := range cases {
		if got := engine.Categorize(tc.description); got != tc.want {
			t.Errorf("Categorize(%q) = %q, want %q", tc.description, got, tc.want)
		}
	}
}

// "mercadolivre" contains "mercado", and the food rule comes first.
func TestCategorize_MercadoLivreQuirk(t *testing.T) {
	engine := category.NewEngine(category.DefaultRules())
	if got := engine.Categorize("MERCADOLIVRE*VENDAS"); got != "Alimentação" {
		t.Errorf("Categorize(MERCADOLIVRE*VENDAS) = %q, want Alimentação", got)
	}
}

func TestCategorize_CaseInsensitive(t *testing.T) {
	engine := category.NewEngine(category.DefaultRules())
	if got := engine.Categorize("Spotify Premium"); got != "Entretenimento" {
		t.Errorf("expected Entretenimento, got %q", got)
	}
}

func TestCategorize_FirstMatchWins(t *testing.T) {
	engine := category.NewEngine([]category.Rule{
		{Label: "Primeira", Keywords: []string{"pizza"}},
		{Label: "Segunda", Keywords: []string{"pizza", "pizzaria"}},
	})
	if got := engine.Categorize("PIZZARIA DO BAIRRO"); got != "Primeira" {
		t.Errorf("expected Primeira, got %q", got)
	}
}

func TestCategorize_MutatedRulesDoNotLeak(t *testing.T) {
	rules := []category.Rule{
		{Label: "Pets", Keywords: []string{"petshop"}},
	}
	engine := category.NewEngine(rules)
	rules[0].Keywords[0] = "banco"

	if got := engine.Categorize("PETSHOP AMIGO FIEL"); got != "Pets" {
		t.Errorf("expected Pets after caller mutation, got %q", got)
	}
}

func TestLabels(t *testing.T) {
	engine := category.NewEngine(category.DefaultRules())
	labels := engine.Labels()

	if len(labels) == 0 {
		t.Fatal("expected labels")
	}
	if labels[len(labels)-1] != category.DefaultLabel {
		t.Errorf("expected %q last, got %q", category.DefaultLabel, labels[len(labels)-1])
	}
	if labels[0] != "Alimentação" {
		t.Errorf("expected Alimentação first, got %q", labels[0])
	}
}
