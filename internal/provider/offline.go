package provider

import "strings"

// OfflineResponder is the last tier of the failover chain: a deterministic
// rule-based classifier that always produces some answer for free-form chat.
// It keeps the user-visible failure mode at "slightly dumber answer" instead
// of "no answer".
type OfflineResponder struct{}

// NewOfflineResponder creates the canned-response fallback.
func NewOfflineResponder() *OfflineResponder {
	return &OfflineResponder{}
}

const offlineDefault = "Estou com uma instabilidade no momento, mas já te respondo. " +
	"Enquanto isso, pode me contar mais sobre o carro que você procura?"

var offlineRules = []struct {
	keywords []string
	reply    string
}{
	{
		keywords: []string{"oi", "olá", "ola", "bom dia", "boa tarde", "boa noite", "hello", "hi"},
		reply:    "Olá! 👋 Sou o assistente da Garagem. Me conta: que tipo de carro você procura?",
	},
	{
		keywords: []string{"obrigado", "obrigada", "valeu", "thanks", "thank you"},
		reply:    "De nada! Qualquer coisa é só chamar. 🚗",
	},
	{
		keywords: []string{"tchau", "até mais", "ate mais", "bye", "adeus"},
		reply:    "Até logo! Quando quiser retomar a busca, é só mandar uma mensagem.",
	},
	{
		keywords: []string{"preço", "preco", "quanto custa", "valor", "price"},
		reply: "Os preços variam conforme o modelo e o ano. Me diga qual carro chamou sua " +
			"atenção que eu busco os detalhes.",
	},
}

// Respond classifies the last user message against a fixed keyword table and
// returns a canned reply. It always returns non-empty text.
func (o *OfflineResponder) Respond(msgs []Message) string {
	last := ""
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			last = strings.ToLower(msgs[i].Content)
			break
		}
	}

	for _, rule := range offlineRules {
		for _, kw := range rule.keywords {
			if strings.Contains(last, kw) {
				return rule.reply
			}
		}
	}
	return offlineDefault
}
