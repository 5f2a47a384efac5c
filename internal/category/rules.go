package category

// DefaultRules is the built-in rule table for Brazilian bank
// descriptions. Order is significant: "mercado" precedes the shopping
// rules, so "mercadolivre" lands in Alimentação rather than Compras.
func DefaultRules() []Rule {
	return []Rule{
		{Label: "Alimentação", Keywords: []string{"mercado", "supermercado", "padaria", "panificadora", "restaurante", "lanchonete", "ifood", "delivery"}},
		{Label: "Transporte", Keywords: []string{"posto", "combustivel", "abastecedora", "uber", "99", "taxi", "estacionamento", "pedagio"}},
		{Label: "Saúde", Keywords: []string{"farmacia", "drogaria", "hospital", "clinica", "medico", "laboratorio", "plano de saude"}},
		{Label: "Educação", Keywords: []string{"escola", "universidade", "faculdade", "curso", "livraria", "livro"}},
		{Label: "Entretenimento", Keywords: []string{"cinema", "teatro", "netflix", "spotify", "jogo", "show", "streaming"}},
		{Label: "Compras", Keywords: []string{"mercadolivre", "amazon", "shopee", "loja", "magazine", "shopping"}},
		{Label: "Serviços", Keywords: []string{"recarga", "telefone", "celular", "internet", "luz", "energia", "agua", "condominio", "assinatura"}},
		{Label: "Salário", Keywords: []string{"salario", "pagamento recebido", "transferencia recebida", "provento"}},
		{Label: "Freelance", Keywords: []string{"freelance", "freela", "consultoria", "servico prestado"}},
		{Label: "Investimentos", Keywords: []string{"investimento", "aplicacao", "resgate", "rendimento", "tesouro", "cdb"}},
	}
}
