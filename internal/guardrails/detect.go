package guardrails

import (
	"regexp"
	"strings"
)

// injectionPatterns is the fixed bilingual (pt/en) prompt-injection set.
// Matching runs over sanitized, lower-cased text, so patterns are all
// lowercase and never need (?i).
var injectionPatterns = []*regexp.Regexp{
	// Instruction-override: ignore/forget/disregard + previous/above/all/the + instructions/rules/prompts
	regexp.MustCompile(`(ignore|forget|disregard)\s+(all\s+|the\s+|any\s+|your\s+)*(previous|above|prior|earlier|all)?\s*(instructions?|rules?|prompts?|directives?)`),
	regexp.MustCompile(`(ignore|esque[çc]a|desconsidere)\s+(as\s+|todas\s+as\s+|suas\s+|qualquer\s+)*(instru[çc][õo]es|regras|comandos|prompts?)( anteriores| acima)?`),

	// Role override
	regexp.MustCompile(`you\s+are\s+now\b`),
	regexp.MustCompile(`from\s+now\s+on\b`),
	regexp.MustCompile(`\bact\s+as\b`),
	regexp.MustCompile(`\bpretend\s+(to\s+be|you)\b`),
	regexp.MustCompile(`voc[êe]\s+agora\s+[ée](\s|$)`),
	regexp.MustCompile(`a\s+partir\s+de\s+agora\b`),
	regexp.MustCompile(`\baja\s+como\b`),
	regexp.MustCompile(`\bfinja\s+(ser|que)\b`),

	// Prompt extraction
	regexp.MustCompile(`(show|reveal|tell|give)\s+(me\s+)?(your|the)\s+(system\s+)?(prompt|instructions?|rules?)`),
	regexp.MustCompile(`(mostre|revele|diga|me\s+d[êe])\s+(o\s+seu|seu|suas|as\s+suas)\s+(prompt|instru[çc][õo]es|regras)`),
	regexp.MustCompile(`qual\s+[ée]\s+o\s+seu\s+prompt`),

	// Role-tag spoofing
	regexp.MustCompile(`\[\s*system\s*\]`),
	regexp.MustCompile(`\bsystem\s*:`),
	regexp.MustCompile(`\[\s*assistant\s*\]`),
	regexp.MustCompile(`\bassistant\s*:`),

	// Jailbreak keywords
	regexp.MustCompile(`\bjailbreak`),
	regexp.MustCompile(`\bdan\s+mode\b`),
	regexp.MustCompile(`\bdeveloper\s+mode\b`),
	regexp.MustCompile(`\bdo\s+anything\s+now\b`),
	regexp.MustCompile(`\bmodo\s+desenvolvedor\b`),
	regexp.MustCompile(`\bsem\s+restri[çc][õo]es\b`),

	// Encoding / obfuscation markers
	regexp.MustCompile(`\bbase64\b`),
	regexp.MustCompile(`(\\x[0-9a-f]{2}){3,}`),
	regexp.MustCompile(`(%[0-9a-f]{2}){3,}`),

	// SQL-injection fragments
	regexp.MustCompile(`union\s+select`),
	regexp.MustCompile(`drop\s+table`),
	regexp.MustCompile(`insert\s+into`),
	regexp.MustCompile(`delete\s+from`),
	regexp.MustCompile(`'\s*or\s*'?1'?\s*=\s*'?1`),
	regexp.MustCompile(`;\s*--`),
}

// leakPatterns catch candidate responses that look like a leaked system
// prompt or model self-identification.
var leakPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)you\s+are\s+a\b`),
	regexp.MustCompile(`(?i)your\s+instructions\s+are\b`),
	regexp.MustCompile(`(?i)\bas\s+an\s+ai\b`),
	regexp.MustCompile(`(?i)\bmy\s+programming\b`),
	regexp.MustCompile(`(?i)\bsystem\s+prompt\b`),
	regexp.MustCompile(`(?i)i\s+was\s+trained\s+by\b`),
	regexp.MustCompile(`(?i)\blanguage\s+model\b`),
	regexp.MustCompile(`(?i)\bcomo\s+uma?\s+ia\b`),
	regexp.MustCompile(`(?i)\bsou\s+uma?\s+(ia|intelig[êe]ncia\s+artificial|modelo\s+de\s+linguagem)\b`),
	regexp.MustCompile(`(?i)minhas\s+instru[çc][õo]es\b`),
	regexp.MustCompile(`(?i)fui\s+programad[oa]\b`),
	regexp.MustCompile(`(?i)\b(openai|anthropic|chatgpt|claude|gemini)\b`),
}

// cpfPattern matches CPF-shaped digit sequences (Brazilian taxpayer IDs),
// with or without separators.
var cpfPattern = regexp.MustCompile(`\d{3}\D?\d{3}\D?\d{3}\D?\d{2}`)

// traceMarkers are substrings of stack-trace or exception text that must
// never reach an end user.
var traceMarkers = []string{
	"error:",
	"exception",
	"stack trace",
	"stacktrace",
	"null pointer",
	"panic:",
	"goroutine ",
	"traceback",
}

// DetectInjection reports whether lowered (sanitized, lower-cased text)
// matches any injection pattern.
func DetectInjection(lowered string) bool {
	for _, p := range injectionPatterns {
		if p.MatchString(lowered) {
			return true
		}
	}
	return false
}

// DetectLeak reports whether a candidate response looks like a system-prompt
// leak, contains a CPF-shaped number, or carries stack-trace text.
func DetectLeak(candidate string) bool {
	for _, p := range leakPatterns {
		if p.MatchString(candidate) {
			return true
		}
	}
	if cpfPattern.MatchString(candidate) {
		return true
	}
	lowered := strings.ToLower(candidate)
	for _, m := range traceMarkers {
		if strings.Contains(lowered, m) {
			return true
		}
	}
	return false
}
