package cli

import "math/rand"

// exampleEmail is a sample email for quick trials.
type exampleEmail struct {
	Text        string
	Expected    string
	Description string
}

var exampleEmails = []exampleEmail{
	{
		Text:        "URGENTE: Sistema crítico fora do ar. Não consigo acessar o painel administrativo desde às 14h. Preciso de suporte imediato para restabelecer o serviço.",
		Expected:    "PRODUTIVO",
		Description: "Emergência técnica",
	},
	{
		Text:        "Gostaria de solicitar um reembolso da minha última transação. O pagamento foi debitado mas o serviço não foi ativado. Número da transação: TRX-12345.",
		Expected:    "PRODUTIVO",
		Description: "Solicitação de reembolso",
	},
	{
		Text:        "Preciso de ajuda com um erro 500 no sistema. Quando tento fazer login, recebo mensagem de 'serviço indisponível'. Podem verificar?",
		Expected:    "PRODUTIVO",
		Description: "Problema técnico",
	},
	{
		Text:        "Muito obrigado pelo excelente atendimento de ontem! A equipe foi muito prestativa e resolveu meu problema rapidamente.",
		Expected:    "IMPRODUTIVO",
		Description: "Agradecimento",
	},
	{
		Text:        "Desejo um feliz natal e um próspero ano novo para toda a equipe! Muito sucesso em 2024!",
		Expected:    "IMPRODUTIVO",
		Description: "Cumprimentos festivos",
	},
}

// pickExample returns the example at index, or a random one when index is
// out of range.
func pickExample(index int) exampleEmail {
	if index >= 0 && index < len(exampleEmails) {
		return exampleEmails[index]
	}
	return exampleEmails[rand.Intn(len(exampleEmails))]
}
