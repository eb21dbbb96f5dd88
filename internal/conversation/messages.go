package conversation

import (
	"fmt"
	"strings"
)

// User-facing texts. Every failure path ends in one of these; raw errors
// never reach the user.
const (
	msgGreeting = "Olá! 👋 Eu sou o assistente da Garagem e vou te ajudar a encontrar o carro ideal. " +
		"Para começar, como você se chama?"

	msgAskBudget   = "Prazer, %s! Quanto você pretende investir no carro? Pode me dizer um valor aproximado."
	msgAskUsage    = "Anotado! E qual vai ser o principal uso do carro? (cidade, estrada, trabalho, família...)"
	msgAskBodyType = "Perfeito. Que tipo de carroceria você prefere? (hatch, sedan, SUV, picape, minivan)"

	msgInvalidName     = "Desculpe, não entendi seu nome. Pode me dizer como você se chama?"
	msgInvalidBudget   = "Não consegui identificar um valor. Me diga o orçamento aproximado, por exemplo: 50000 ou 50 mil."
	msgInvalidUsage    = "Não entendi o uso. Me diga se é mais para cidade, estrada, trabalho ou família."
	msgInvalidBodyType = "Não reconheci esse tipo de carro. Pode escolher entre hatch, sedan, SUV, picape ou minivan?"

	msgFarewell = "Obrigado pelo contato! Quando quiser retomar a busca, é só mandar uma mensagem. 🚗"
	msgRestart  = "Sem problemas, vamos recomeçar! "

	msgDegraded = "Tivemos um problema técnico por aqui, mas já estamos resolvendo. " +
		"Pode repetir sua última mensagem em instantes?"
	msgHandoff = "Vou te transferir para um dos nossos consultores, que vai continuar o atendimento. " +
		"Aguarde só um instante! 🤝"

	msgLeadCaptured = "Excelente escolha! 🎉 Registrei seu interesse no %s. " +
		"Um dos nossos consultores vai entrar em contato para combinar os detalhes."
	msgLeadAlreadyCaptured = "Seu interesse já está registrado! Um consultor vai falar com você em breve. " +
		"Enquanto isso, posso tirar outras dúvidas."

	msgDataDeleted      = "Pronto! Todos os seus dados pessoais foram removidos dos nossos sistemas."
	msgDataDeleteFailed = "Não consegui concluir a remoção agora. Tente novamente em alguns minutos, por favor."
	msgDataExportFailed = "Não consegui gerar a exportação agora. Tente novamente em alguns minutos, por favor."
)

// formatBRL renders a price as "R$ 89.900" with dot thousand separators.
func formatBRL(v float64) string {
	n := int64(v)
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return "R$ " + s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return "R$ " + strings.Join(parts, ".")
}
