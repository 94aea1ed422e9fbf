package services

import (
	"fmt"
	"time"

	"airbnb-etl/models"
	"airbnb-etl/utils"
)

// ReviewsCleaner subsamples the raw reviews table, drops rows without a
// comment and attaches a sentiment label and score to every remaining row.
type ReviewsCleaner struct {
	logger      *utils.Logger
	classifier  *SentimentClassifier
	sampleSize  int
	concurrency int
}

// NewReviewsCleaner creates a ReviewsCleaner. sampleSize bounds how many
// reviews are scored (positional truncation, not a random sample).
// concurrency sizes the scoring worker pool; 1 keeps scoring sequential.
func NewReviewsCleaner(logger *utils.Logger, classifier *SentimentClassifier, sampleSize, concurrency int) *ReviewsCleaner {
	return &ReviewsCleaner{
		logger:      logger,
		classifier:  classifier,
		sampleSize:  sampleSize,
		concurrency: concurrency,
	}
}

// Clean returns the scored reviews table. Row order follows the input; the
// result index is dense and 0-based.
func (c *ReviewsCleaner) Clean(raw *models.Table) *models.Table {
	df := raw.Head(c.sampleSize)

	if df.Has("comments") {
		df.Filter(func(r models.Row) bool {
			return !models.IsNull(r["comments"])
		})
	}
	if df.Has("date") {
		for _, r := range df.Rows() {
			r["date"] = parseDate(r["date"])
		}
	}

	c.attachSentiment(df)

	c.logger.Info("[reviews] scored %d reviews (sample size %d)", df.Len(), c.sampleSize)
	return df
}

// attachSentiment scores every comment. Scoring is independent per row, so
// it may run on a bounded worker pool; results are written to pre-assigned
// slots to keep row order intact.
func (c *ReviewsCleaner) attachSentiment(df *models.Table) {
	df.AddColumn("sentimiento")
	df.AddColumn("puntuacion_sentimiento")

	rows := df.Rows()
	labels := make([]string, len(rows))
	scores := make([]float64, len(rows))

	score := func(i int) {
		labels[i], scores[i] = c.classifier.Score(commentText(rows[i]["comments"]))
	}

	if c.concurrency > 1 {
		pool := utils.NewWorkerPool(c.concurrency)
		for i := range rows {
			i := i
			pool.Submit(func() { score(i) })
		}
		pool.Wait()
	} else {
		for i := range rows {
			score(i)
		}
	}

	for i, r := range rows {
		r["sentimiento"] = labels[i]
		r["puntuacion_sentimiento"] = scores[i]
	}
}

func commentText(v any) string {
	if models.IsNull(v) {
		return ""
	}
	if s, ok := models.Str(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

// dateLayouts cover the encodings seen in the source collections.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate coerces a cell to time.Time; unparsable values become null and
// the row is retained.
func parseDate(v any) any {
	switch d := v.(type) {
	case time.Time:
		return d
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t
			}
		}
	}
	return nil
}
