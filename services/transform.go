package services

import (
	"errors"
	"math"
	"strconv"

	"airbnb-etl/models"
	"airbnb-etl/utils"
)

// ErrNotCleaned is returned when aggregation or result access is attempted
// before every cleaning stage has produced its table.
var ErrNotCleaned = errors.New("transform: run the cleaning stages before aggregating")

// Final table column names for the per-listing aggregates.
const (
	colMeanSentiment = "sentimiento_promedio"
	colReviewCount   = "numero_de_reviews_sentimiento"
	colAvailability  = "tasa_disponibilidad_anual"
	colDaysAvailable = "dias_disponibles_anual"
)

// TransformerConfig tunes the transformation stage.
type TransformerConfig struct {
	// ReviewsSampleSize bounds how many raw reviews are scored.
	ReviewsSampleSize int
	// ScoringConcurrency sizes the sentiment worker pool; 1 is sequential.
	ScoringConcurrency int
}

// Transformer owns the cleaning and enrichment of the three raw tables and
// the merge into the final analytical table. Each stage materializes its
// output fully before the next stage reads it.
type Transformer struct {
	logger *utils.Logger

	rawListings *models.Table
	rawReviews  *models.Table
	rawCalendar *models.Table

	listings *ListingsCleaner
	reviews  *ReviewsCleaner
	calendar *CalendarCleaner

	cleanListings *models.Table
	scoredReviews *models.Table
	cleanCalendar *models.Table
	final         *models.Table
}

// NewTransformer wires the cleaners over the raw tables. The sentiment
// classifier (and its language detector) is built once here.
func NewTransformer(logger *utils.Logger, cfg TransformerConfig, listings, reviews, calendar *models.Table) *Transformer {
	classifier := NewSentimentClassifier()
	t := &Transformer{
		logger:      logger,
		rawListings: listings,
		rawReviews:  reviews,
		rawCalendar: calendar,
		listings:    NewListingsCleaner(logger),
		reviews:     NewReviewsCleaner(logger, classifier, cfg.ReviewsSampleSize, cfg.ScoringConcurrency),
		calendar:    NewCalendarCleaner(logger),
	}
	logger.Info("[transform] initialized — listings: %d, reviews: %d, calendar: %d rows",
		listings.Len(), reviews.Len(), calendar.Len())
	return t
}

// CleanListings runs the listings cleaning stage.
func (t *Transformer) CleanListings() {
	t.logger.Section("Transformación de listings")
	t.cleanListings = t.listings.Clean(t.rawListings)
}

// CleanReviews runs the reviews sampling and sentiment stage.
func (t *Transformer) CleanReviews() {
	t.logger.Section("Transformación de reviews")
	t.scoredReviews = t.reviews.Clean(t.rawReviews)
}

// CleanCalendar runs the calendar normalization stage.
func (t *Transformer) CleanCalendar() {
	t.logger.Section("Transformación de calendar")
	t.cleanCalendar = t.calendar.Clean(t.rawCalendar)
}

// AggregateAndMerge groups reviews and calendar per listing and left-joins
// both aggregates onto the cleaned listings. Calling it before the three
// cleaning stages completed is a programming error.
func (t *Transformer) AggregateAndMerge() error {
	if t.cleanListings == nil || t.scoredReviews == nil || t.cleanCalendar == nil {
		return ErrNotCleaned
	}
	t.logger.Section("Agregación y merge final")

	sentiment := aggregateSentiment(t.scoredReviews)
	t.logger.Info("[transform] sentiment aggregate covers %d listings", len(sentiment))
	availability := aggregateCalendar(t.cleanCalendar)
	t.logger.Info("[transform] calendar aggregate covers %d listings", len(availability))

	final := t.cleanListings.Copy()
	final.AddColumn(colMeanSentiment)
	final.AddColumn(colReviewCount)
	final.AddColumn(colAvailability)
	final.AddColumn(colDaysAvailable)

	for _, r := range final.Rows() {
		key, ok := listingKey(r["id"])

		r[colMeanSentiment] = 0.0
		r[colReviewCount] = 0
		r[colAvailability] = 0.0
		r[colDaysAvailable] = 0
		if !ok {
			continue
		}
		if agg, found := sentiment[key]; found {
			r[colMeanSentiment] = agg.mean
			r[colReviewCount] = agg.count
		}
		if agg, found := availability[key]; found {
			r[colAvailability] = agg.rate
			r[colDaysAvailable] = agg.days
		}
	}

	t.final = final
	t.logger.Info("[transform] final table: %d rows, %d columns",
		final.Len(), len(final.Columns()))
	return nil
}

// Run executes the whole transformation and returns the final table.
func (t *Transformer) Run() (*models.Table, error) {
	t.CleanListings()
	t.CleanReviews()
	t.CleanCalendar()
	if err := t.AggregateAndMerge(); err != nil {
		return nil, err
	}
	t.logger.Info("[transform] pipeline completed")
	return t.final, nil
}

// Results returns copies of the four output tables. It fails when the
// pipeline has not completed.
func (t *Transformer) Results() (cleanListings, scoredReviews, cleanCalendar, final *models.Table, err error) {
	if t.cleanListings == nil || t.scoredReviews == nil || t.cleanCalendar == nil || t.final == nil {
		return nil, nil, nil, nil, ErrNotCleaned
	}
	return t.cleanListings.Copy(), t.scoredReviews.Copy(), t.cleanCalendar.Copy(), t.final.Copy(), nil
}

// sentimentAggregate holds the per-listing review summary.
type sentimentAggregate struct {
	mean  float64
	count int
}

// calendarAggregate holds the per-listing availability summary.
type calendarAggregate struct {
	rate float64
	days int
}

func aggregateSentiment(reviews *models.Table) map[string]sentimentAggregate {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range reviews.Rows() {
		key, ok := listingKey(r["listing_id"])
		if !ok {
			continue
		}
		score, ok := models.Float(r["puntuacion_sentimiento"])
		if !ok {
			continue
		}
		sums[key] += score
		counts[key]++
	}

	out := make(map[string]sentimentAggregate, len(counts))
	for key, n := range counts {
		out[key] = sentimentAggregate{
			mean:  roundTo(sums[key]/float64(n), 4),
			count: n,
		}
	}
	return out
}

func aggregateCalendar(calendar *models.Table) map[string]calendarAggregate {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range calendar.Rows() {
		key, ok := listingKey(r["listing_id"])
		if !ok {
			continue
		}
		avail, ok := models.Float(r["available"])
		if !ok {
			continue
		}
		sums[key] += avail
		counts[key]++
	}

	out := make(map[string]calendarAggregate, len(counts))
	for key, n := range counts {
		out[key] = calendarAggregate{
			rate: roundTo(sums[key]/float64(n)*100, 2),
			days: int(sums[key]),
		}
	}
	return out
}

// listingKey canonicalizes a listing id for grouping: the listings table
// carries ids as integers while reviews and calendar may carry the same id
// as int64 or float64.
func listingKey(v any) (string, bool) {
	if models.IsNull(v) {
		return "", false
	}
	if f, ok := models.Float(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	if s, ok := models.Str(v); ok {
		return s, true
	}
	return "", false
}

func roundTo(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(x*p) / p
}
