package services

import (
	"sync"
	"testing"
)

var (
	classifierOnce sync.Once
	testClassifier *SentimentClassifier
)

// newTestClassifier shares one classifier across tests; building the
// language detector is the expensive part.
func newTestClassifier() *SentimentClassifier {
	classifierOnce.Do(func() {
		testClassifier = NewSentimentClassifier()
	})
	return testClassifier
}

func TestScoreEmptyInput(t *testing.T) {
	c := newTestClassifier()

	for _, text := range []string{"", "   ", "\n\t  "} {
		label, score := c.Score(text)
		if label != SentimentNeutral || score != 0.0 {
			t.Errorf("Score(%q) = (%q, %v); want (Neutral, 0.0)", text, label, score)
		}
	}
}

func TestClassifySentimentThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1.0, SentimentPositive},
		{0.05, SentimentPositive}, // inclusive boundary
		{0.049, SentimentNeutral},
		{0.0, SentimentNeutral},
		{-0.049, SentimentNeutral},
		{-0.05, SentimentNegative}, // inclusive boundary
		{-1.0, SentimentNegative},
	}

	for _, tt := range tests {
		if got := classifySentiment(tt.score); got != tt.want {
			t.Errorf("classifySentiment(%v) = %q; want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreSpanishComments(t *testing.T) {
	c := newTestClassifier()

	label, score := c.Score("Excelente lugar, muy limpio")
	if label != SentimentPositive || score < 0.05 {
		t.Errorf("spanish positive comment = (%q, %v); want Positivo with score ≥ 0.05", label, score)
	}

	label, score = c.Score("Horrible, todo estaba muy sucio y el barrio es ruidoso")
	if label != SentimentNegative || score > -0.05 {
		t.Errorf("spanish negative comment = (%q, %v); want Negativo with score ≤ -0.05", label, score)
	}
}

func TestScoreEnglishComments(t *testing.T) {
	c := newTestClassifier()

	label, score := c.Score("I love this place, it was amazing and wonderful!")
	if label != SentimentPositive || score < 0.05 {
		t.Errorf("english positive comment = (%q, %v); want Positivo with score ≥ 0.05", label, score)
	}

	label, score = c.Score("Terrible experience, the room was dirty and the host was awful.")
	if label != SentimentNegative || score > -0.05 {
		t.Errorf("english negative comment = (%q, %v); want Negativo with score ≤ -0.05", label, score)
	}
}

func TestSpanishScorer(t *testing.T) {
	s := NewSpanishScorer()

	tests := []struct {
		text string
		sign int // -1, 0, +1
	}{
		{"excelente", 1},
		{"muy bueno", 1},
		{"no es bueno", -1},
		{"pésimo servicio", -1},
		{"la casa tiene cuatro paredes", 0},
		{"", 0},
	}

	for _, tt := range tests {
		got := s.Polarity(tt.text)
		switch {
		case tt.sign > 0 && got <= 0:
			t.Errorf("Polarity(%q) = %v; want > 0", tt.text, got)
		case tt.sign < 0 && got >= 0:
			t.Errorf("Polarity(%q) = %v; want < 0", tt.text, got)
		case tt.sign == 0 && got != 0:
			t.Errorf("Polarity(%q) = %v; want 0", tt.text, got)
		}
	}
}

func TestSpanishScorerBoosting(t *testing.T) {
	s := NewSpanishScorer()

	plain := s.Polarity("limpio")
	boosted := s.Polarity("muy limpio")
	if boosted <= plain {
		t.Errorf("booster did not raise polarity: plain=%v boosted=%v", plain, boosted)
	}
}
