package services

import (
	"strings"

	"github.com/jonreiter/govader"
	"github.com/pemistahl/lingua-go"
)

// Sentiment labels attached to each scored review.
const (
	SentimentPositive = "Positivo"
	SentimentNegative = "Negativo"
	SentimentNeutral  = "Neutral"
)

// Thresholds for turning a polarity score into a label. Scores at exactly
// ±0.05 take the labeled side.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// SentimentClassifier scores free-text review comments. It detects the
// comment's language and routes Spanish text to the lexicon scorer and
// everything else (including undetectable text) to VADER's compound score.
type SentimentClassifier struct {
	detector lingua.LanguageDetector
	vader    *govader.SentimentIntensityAnalyzer
	spanish  *SpanishScorer
}

// NewSentimentClassifier builds the classifier. The language detector is
// constructed once here so detection stays deterministic across the run.
func NewSentimentClassifier() *SentimentClassifier {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.Spanish,
			lingua.English,
			lingua.Portuguese,
			lingua.French,
			lingua.German,
			lingua.Italian,
		).
		Build()

	return &SentimentClassifier{
		detector: detector,
		vader:    govader.NewSentimentIntensityAnalyzer(),
		spanish:  NewSpanishScorer(),
	}
}

// Score returns a sentiment label and a polarity score in roughly [-1, 1].
// Empty or whitespace-only input is Neutral with score 0.0 and skips
// language detection entirely. Scoring never fails: an undetectable language
// falls through to VADER, and a scorer panic degrades to 0.0.
func (c *SentimentClassifier) Score(text string) (string, float64) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return SentimentNeutral, 0.0
	}

	isSpanish := false
	if lang, ok := c.detector.DetectLanguageOf(trimmed); ok {
		isSpanish = lang == lingua.Spanish
	}

	score := c.polarity(trimmed, isSpanish)
	return classifySentiment(score), score
}

func (c *SentimentClassifier) polarity(text string, isSpanish bool) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			score = 0.0
		}
	}()

	if isSpanish {
		return c.spanish.Polarity(text)
	}
	return c.vader.PolarityScores(text).Compound
}

func classifySentiment(score float64) string {
	switch {
	case score >= positiveThreshold:
		return SentimentPositive
	case score <= negativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
