package services

import (
	"strings"
	"unicode"

	"airbnb-etl/utils"
)

// SpanishScorer estimates the polarity of Spanish text from a word lexicon
// with booster and negation handling. The overall score is the mean polarity
// of the matched words, clamped to [-1, 1]. Text with no lexicon hits scores
// 0.0.
type SpanishScorer struct{}

// NewSpanishScorer returns a ready-to-use scorer.
func NewSpanishScorer() *SpanishScorer {
	return &SpanishScorer{}
}

// Polarity scores the given text in [-1, 1].
func (s *SpanishScorer) Polarity(text string) float64 {
	tokens := spanishTokens(text)

	var sum float64
	var matched int
	for i, tok := range tokens {
		base, ok := spanishPolarity[tok]
		if !ok {
			continue
		}

		// Boosters and negators act on the two preceding tokens:
		// "muy limpio", "no es bueno".
		polarity := base
		negated := false
		for back := 1; back <= 2 && i-back >= 0; back++ {
			prev := tokens[i-back]
			if factor, boosted := spanishBoosters[prev]; boosted {
				polarity *= factor
			}
			if _, neg := spanishNegators[prev]; neg {
				negated = true
			}
		}
		if negated {
			polarity *= -0.5
		}

		sum += polarity
		matched++
	}

	if matched == 0 {
		return 0.0
	}
	score := sum / float64(matched)
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score
}

// spanishTokens lowercases, folds diacritics and splits on non-letters, so
// lexicon keys can be stored unaccented.
func spanishTokens(text string) []string {
	folded := utils.StripDiacritics(strings.ToLower(text))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// spanishPolarity holds unaccented lowercase words with polarity in [-1, 1].
// Gendered and plural variants are listed explicitly; there is no stemming.
var spanishPolarity = map[string]float64{
	"excelente": 1.0, "excelentes": 1.0,
	"perfecto": 1.0, "perfecta": 1.0,
	"increible": 0.9, "increibles": 0.9,
	"maravilloso": 0.9, "maravillosa": 0.9,
	"fantastico": 0.9, "fantastica": 0.9,
	"espectacular": 0.9,
	"genial":       0.8,
	"encantador":   0.85, "encantadora": 0.85,
	"encanto": 0.8, "encanta": 0.8,
	"hermoso": 0.85, "hermosa": 0.85,
	"precioso": 0.85, "preciosa": 0.85,
	"bonito": 0.75, "bonita": 0.75,
	"lindo": 0.75, "linda": 0.75,
	"recomendable": 0.8, "recomendado": 0.75, "recomendada": 0.75,
	"bueno": 0.7, "buena": 0.7, "buenos": 0.7, "buenas": 0.7,
	"comodo": 0.7, "comoda": 0.7, "comodos": 0.7, "comodas": 0.7,
	"amable": 0.7, "amables": 0.7,
	"acogedor": 0.7, "acogedora": 0.7,
	"limpio": 0.6, "limpia": 0.6, "limpios": 0.6, "limpias": 0.6,
	"impecable": 0.85,
	"atento":    0.6, "atenta": 0.6, "atentos": 0.6,
	"agradable": 0.6, "agradables": 0.6,
	"amplio": 0.5, "amplia": 0.5,
	"luminoso": 0.5, "luminosa": 0.5,
	"tranquilo": 0.5, "tranquila": 0.5,
	"seguro": 0.5, "segura": 0.5,
	"rapido": 0.5, "rapida": 0.5,
	"util": 0.4, "utiles": 0.4,
	"barato": 0.4, "barata": 0.4,
	"centrico": 0.4, "centrica": 0.4,
	"nuevo": 0.4, "nueva": 0.4,
	"feliz": 0.8, "felices": 0.8,
	"disfrutamos": 0.6, "disfrute": 0.6,
	"volveria": 0.7, "volveremos": 0.7,

	"pesimo": -1.0, "pesima": -1.0,
	"terrible": -1.0, "terribles": -1.0,
	"horrible": -1.0, "horribles": -1.0,
	"desastre":       -0.8,
	"apestoso":       -0.8,
	"decepcionante":  -0.7, "decepcion": -0.7,
	"malo": -0.7, "mala": -0.7, "malos": -0.7, "malas": -0.7,
	"grosero": -0.7, "grosera": -0.7,
	"desagradable": -0.7, "desagradables": -0.7,
	"peligroso": -0.7, "peligrosa": -0.7,
	"feo": -0.65, "fea": -0.65,
	"sucio": -0.6, "sucia": -0.6, "sucios": -0.6, "sucias": -0.6,
	"incomodo": -0.6, "incomoda": -0.6,
	"roto": -0.6, "rota": -0.6, "rotos": -0.6,
	"deficiente": -0.6,
	"inseguro":   -0.6, "insegura": -0.6,
	"ruidoso": -0.5, "ruidosa": -0.5,
	"ruido":   -0.4,
	"lento":   -0.4, "lenta": -0.4,
	"caro": -0.4, "cara": -0.4, "caros": -0.4,
	"viejo": -0.3, "vieja": -0.3,
	"oscuro": -0.3, "oscura": -0.3,
	"frio": -0.3, "fria": -0.3,
	"olor": -0.3, "olores": -0.3,
}

// spanishBoosters scale the polarity of the word they precede.
var spanishBoosters = map[string]float64{
	"muy":             1.3,
	"super":           1.4,
	"tan":             1.2,
	"bastante":        1.15,
	"demasiado":       1.3,
	"realmente":       1.3,
	"totalmente":      1.3,
	"absolutamente":   1.4,
	"extremadamente":  1.5,
	"increiblemente":  1.5,
	"verdaderamente":  1.3,
	"sumamente":       1.4,
	"poco":            0.5,
	"algo":            0.7,
	"ligeramente":     0.6,
	"relativamente":   0.8,
}

// spanishNegators flip and dampen the polarity of the word they precede,
// mirroring how "no está limpio" reads weaker than "está sucio".
var spanishNegators = map[string]struct{}{
	"no":      {},
	"nunca":   {},
	"jamas":   {},
	"ni":      {},
	"nada":    {},
	"tampoco": {},
	"sin":     {},
}
