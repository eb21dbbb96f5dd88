package conversation

import (
	"regexp"
	"strings"
)

// InterestSignal is the outcome of scanning a message for purchase intent.
type InterestSignal struct {
	Confidence   float64
	VehicleIndex int // 0-based index into recommendations; -1 when unspecified
}

// Strong phrases are explicit buy intent; weak phrases are positive but
// ambiguous and only qualify when combined with a vehicle reference.
var strongInterestPhrases = []string{
	"quero esse", "quero este", "quero comprar", "vou levar", "vou ficar com",
	"pode ser esse", "fechado", "vamos fechar", "quero fechar",
	"tenho interesse", "me interessei",
	"i want this", "i'll take", "i will take", "let's close", "i'm interested",
}

var weakInterestPhrases = []string{
	"gostei", "adorei", "curti", "me agradou", "parece bom", "parece ótimo",
	"i like", "looks good", "sounds good",
}

var ordinalWords = map[string]int{
	"primeiro": 0, "primeira": 0, "first": 0,
	"segundo": 1, "segunda": 1, "second": 1,
	"terceiro": 2, "terceira": 2, "third": 2,
	"quarto": 3, "quarta": 3, "fourth": 3,
	"quinto": 4, "quinta": 4, "fifth": 4,
}

var ordinalDigitPattern = regexp.MustCompile(`(?:^|\D)([1-5])(?:º|°|o\b|a\b|\b)`)

// DetectInterest scores purchase intent in a lower-cased message. Confidence:
// a strong phrase alone scores 0.8, a weak phrase alone 0.5, and an explicit
// vehicle reference adds 0.2 (capped at 1.0).
func DetectInterest(lowered string) InterestSignal {
	sig := InterestSignal{VehicleIndex: -1}

	for _, p := range strongInterestPhrases {
		if strings.Contains(lowered, p) {
			sig.Confidence = 0.8
			break
		}
	}
	if sig.Confidence == 0 {
		for _, p := range weakInterestPhrases {
			if strings.Contains(lowered, p) {
				sig.Confidence = 0.5
				break
			}
		}
	}
	if sig.Confidence == 0 {
		return sig
	}

	sig.VehicleIndex = ordinalReference(lowered)
	if sig.VehicleIndex >= 0 {
		sig.Confidence += 0.2
		if sig.Confidence > 1.0 {
			sig.Confidence = 1.0
		}
	}
	return sig
}

func ordinalReference(lowered string) int {
	for word, idx := range ordinalWords {
		if strings.Contains(lowered, word) {
			return idx
		}
	}
	if m := ordinalDigitPattern.FindStringSubmatch(lowered); m != nil {
		return int(m[1][0]-'0') - 1
	}
	return -1
}
