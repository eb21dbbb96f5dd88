package conversation

import "strings"

// Interception is the verdict of the global command interceptors, evaluated
// before node dispatch on every message regardless of current node.
type Interception int

const (
	InterceptNone Interception = iota
	InterceptExit
	InterceptRestart
	InterceptGreeting
	InterceptExportData
	InterceptDeleteData
)

var exitCommands = []string{
	"sair", "encerrar", "finalizar", "cancelar", "parar",
	"exit", "quit", "stop", "bye", "tchau", "adeus",
}

var restartCommands = []string{
	"recomeçar", "recomecar", "reiniciar", "começar de novo", "comecar de novo",
	"restart", "start over", "reset",
}

var greetingPhrases = []string{
	"oi", "olá", "ola", "oi!", "olá!", "ola!", "e aí", "e ai",
	"bom dia", "boa tarde", "boa noite",
	"hello", "hi", "hey", "good morning",
}

var deleteDataCommands = []string{
	"apagar meus dados", "excluir meus dados", "deletar meus dados",
	"delete my data", "erase my data", "remover meus dados",
}

var exportDataCommands = []string{
	"exportar meus dados", "baixar meus dados", "meus dados pessoais",
	"export my data", "download my data",
}

// Intercept classifies a sanitized, lower-cased message against the global
// command lists. Data-rights commands win over everything else; exit wins
// over restart; greetings only match short standalone phrases so "oi, quero
// um carro barato" is not swallowed as a bare greeting.
func Intercept(lowered string) Interception {
	lowered = strings.TrimSpace(lowered)

	for _, cmd := range deleteDataCommands {
		if strings.Contains(lowered, cmd) {
			return InterceptDeleteData
		}
	}
	for _, cmd := range exportDataCommands {
		if strings.Contains(lowered, cmd) {
			return InterceptExportData
		}
	}
	for _, cmd := range exitCommands {
		if lowered == cmd {
			return InterceptExit
		}
	}
	for _, cmd := range restartCommands {
		if lowered == cmd || strings.HasPrefix(lowered, cmd+" ") {
			return InterceptRestart
		}
	}
	if isBareGreeting(lowered) {
		return InterceptGreeting
	}
	return InterceptNone
}

func isBareGreeting(lowered string) bool {
	if len(lowered) > 25 {
		return false
	}
	trimmed := strings.Trim(lowered, "!?. ")
	for _, g := range greetingPhrases {
		if trimmed == strings.Trim(g, "!") {
			return true
		}
	}
	return false
}
