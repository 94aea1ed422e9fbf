package services

import (
	"errors"
	"testing"

	"airbnb-etl/models"
)

func TestAggregateBeforeCleaningFails(t *testing.T) {
	empty := mkTable([]string{"id"})
	tr := NewTransformer(newTestLogger(), TransformerConfig{ReviewsSampleSize: 10, ScoringConcurrency: 1},
		empty, empty.Copy(), empty.Copy())

	if err := tr.AggregateAndMerge(); !errors.Is(err, ErrNotCleaned) {
		t.Fatalf("AggregateAndMerge() before cleaning = %v; want ErrNotCleaned", err)
	}
	if _, _, _, _, err := tr.Results(); !errors.Is(err, ErrNotCleaned) {
		t.Fatalf("Results() before cleaning = %v; want ErrNotCleaned", err)
	}
}

func TestAggregateSentiment(t *testing.T) {
	scored := mkTable(
		[]string{"listing_id", "puntuacion_sentimiento"},
		models.Row{"listing_id": 1, "puntuacion_sentimiento": 0.8},
		models.Row{"listing_id": 1, "puntuacion_sentimiento": 0.33333},
		models.Row{"listing_id": 2, "puntuacion_sentimiento": -0.5},
	)

	agg := aggregateSentiment(scored)
	if len(agg) != 2 {
		t.Fatalf("aggregate covers %d listings; want 2", len(agg))
	}

	one := agg["1"]
	if one.count != 2 || one.mean != 0.5667 { // mean rounded to 4 decimals
		t.Errorf("listing 1 aggregate = (%v, %d); want (0.5667, 2)", one.mean, one.count)
	}
	two := agg["2"]
	if two.count != 1 || two.mean != -0.5 {
		t.Errorf("listing 2 aggregate = (%v, %d); want (-0.5, 1)", two.mean, two.count)
	}
}

func TestAggregateCalendarFullYear(t *testing.T) {
	rows := make([]models.Row, 0, 365)
	for i := 0; i < 365; i++ {
		avail := 0
		if i < 300 {
			avail = 1
		}
		rows = append(rows, models.Row{"listing_id": 1, "available": avail})
	}

	agg := aggregateCalendar(models.NewTable([]string{"listing_id", "available"}, rows))
	one := agg["1"]
	if one.days != 300 {
		t.Errorf("dias_disponibles_anual = %d; want 300", one.days)
	}
	if one.rate != 82.19 { // 300/365*100 rounded to 2 decimals
		t.Errorf("tasa_disponibilidad_anual = %v; want 82.19", one.rate)
	}
}

func TestMergeFillsMissingAggregatesWithZero(t *testing.T) {
	listings := mkTable(
		[]string{"id", "price"},
		models.Row{"id": 1, "price": 100.0},
		models.Row{"id": 2, "price": 100.0},
	)
	reviews := mkTable(
		[]string{"listing_id", "date", "comments"},
		reviewRow(1, "nice"),
		reviewRow(1, "cozy"),
	)
	calendar := mkTable(
		[]string{"listing_id", "date", "available"},
		models.Row{"listing_id": 1, "date": "2024-01-01", "available": "t"},
		models.Row{"listing_id": 1, "date": "2024-01-02", "available": "t"},
		models.Row{"listing_id": 1, "date": "2024-01-03", "available": "f"},
	)

	tr := NewTransformer(newTestLogger(), TransformerConfig{ReviewsSampleSize: 100, ScoringConcurrency: 1},
		listings, reviews, calendar)
	final, err := tr.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if final.Len() != 2 {
		t.Fatalf("every listing must appear exactly once; got %d rows", final.Len())
	}

	byID := map[any]models.Row{}
	for _, r := range final.Rows() {
		byID[r["id"]] = r
	}

	matched := byID[1]
	if matched["numero_de_reviews_sentimiento"] != 2 {
		t.Errorf("listing 1 review count = %v; want 2", matched["numero_de_reviews_sentimiento"])
	}
	if matched["tasa_disponibilidad_anual"] != 66.67 {
		t.Errorf("listing 1 availability rate = %v; want 66.67", matched["tasa_disponibilidad_anual"])
	}
	if matched["dias_disponibles_anual"] != 2 {
		t.Errorf("listing 1 available days = %v; want 2", matched["dias_disponibles_anual"])
	}

	unmatched := byID[2]
	if unmatched["sentimiento_promedio"] != 0.0 ||
		unmatched["numero_de_reviews_sentimiento"] != 0 ||
		unmatched["tasa_disponibilidad_anual"] != 0.0 ||
		unmatched["dias_disponibles_anual"] != 0 {
		t.Errorf("listing 2 aggregates should all be zero, got %v", unmatched)
	}

	// Count fields are integers, not floats.
	if _, isInt := matched["numero_de_reviews_sentimiento"].(int); !isInt {
		t.Error("numero_de_reviews_sentimiento must be an integer")
	}
	if _, isInt := matched["dias_disponibles_anual"].(int); !isInt {
		t.Error("dias_disponibles_anual must be an integer")
	}
}

func TestResultsReturnsCopies(t *testing.T) {
	listings := mkTable([]string{"id", "price"}, models.Row{"id": 1, "price": 50.0})
	reviews := mkTable([]string{"listing_id", "date", "comments"}, reviewRow(1, "ok"))
	calendar := mkTable([]string{"listing_id", "available"}, models.Row{"listing_id": 1, "available": "t"})

	tr := NewTransformer(newTestLogger(), TransformerConfig{ReviewsSampleSize: 100, ScoringConcurrency: 1},
		listings, reviews, calendar)
	if _, err := tr.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	clean1, _, _, final1, err := tr.Results()
	if err != nil {
		t.Fatalf("Results() error: %v", err)
	}
	clean1.Row(0)["price"] = -1.0
	final1.Row(0)["price"] = -1.0

	clean2, _, _, final2, _ := tr.Results()
	if clean2.Row(0)["price"] != 50.0 || final2.Row(0)["price"] != 50.0 {
		t.Error("Results() must hand out copies, not aliases")
	}
}
