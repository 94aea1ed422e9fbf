package services

import (
	"encoding/json"
	"strconv"
	"strings"

	"airbnb-etl/models"
	"airbnb-etl/utils"
)

// responseSpeed buckets the raw host_response_time values. Anything else,
// including a missing value, maps to Unknown.
var responseSpeed = map[string]string{
	"within an hour":     "Fast",
	"within a few hours": "Fast",
	"within a day":       "Moderate",
	"a few days or more": "Slow",
}

// hostRateColumns hold percent-encoded strings like "98%".
var hostRateColumns = []string{"host_response_rate", "host_acceptance_rate"}

// scoreColumns are filled with 0 where missing.
var scoreColumns = []string{
	"review_scores_rating",
	"review_scores_accuracy",
	"review_scores_cleanliness",
	"review_scores_checkin",
	"review_scores_communication",
	"review_scores_location",
	"review_scores_value",
	"reviews_per_month",
}

// outlierColumns are IQR-filtered in this order; each column's quantiles are
// computed on the rows that survived the previous columns. The order is part
// of the behavior and must not be reshuffled.
var outlierColumns = []string{"bathrooms", "bedrooms", "beds", "price"}

// hardCaps drop rows beyond fixed ceilings regardless of the IQR bounds.
var hardCaps = []struct {
	col   string
	limit float64
}{
	{"bathrooms", 10},
	{"bedrooms", 10},
	{"beds", 15},
	{"price", 400000},
}

// droppedColumns are high-null or low-value fields removed at the end.
var droppedColumns = []string{
	"description",
	"host_name",
	"host_since",
	"host_location",
	"host_response_time",
	"host_response_rate",
	"host_acceptance_rate",
	"host_is_superhost",
	"host_thumbnail_url",
	"host_picture_url",
	"host_listings_count",
	"host_total_listings_count",
	"host_has_profile_pic",
	"host_identity_verified",
	"first_review",
	"last_review",
	"bathrooms_text",
	"minimum_minimum_nights",
	"maximum_minimum_nights",
	"minimum_maximum_nights",
	"maximum_maximum_nights",
}

const topAmenities = 12

// ListingsCleaner normalizes raw listing records into an analysis-ready
// table. Every step checks column presence before acting, so partial inputs
// clean without error.
type ListingsCleaner struct {
	logger *utils.Logger
}

// NewListingsCleaner creates a ListingsCleaner with the given logger.
func NewListingsCleaner(logger *utils.Logger) *ListingsCleaner {
	return &ListingsCleaner{logger: logger}
}

// Clean runs the full listing normalization over a copy of raw. The step
// order is significant: later steps operate on the output of earlier ones.
func (c *ListingsCleaner) Clean(raw *models.Table) *models.Table {
	df := raw.Copy()
	before := df.Len()

	c.normalizeHostRates(df)
	c.mapResponseSpeed(df)
	c.expandVerifications(df)
	c.expandAmenities(df)
	c.cleanPrice(df)
	c.imputeMedians(df)
	c.fillScores(df)
	c.normalizeAvailability(df)
	c.cleanNeighbourhood(df)
	c.filterOutliers(df)
	c.applyHardCaps(df)
	df.Drop(droppedColumns...)

	c.logger.Info("[listings] cleaned %d → %d rows, %d columns",
		before, df.Len(), len(df.Columns()))
	return df
}

// Step 1: "98%" → 98.0; unparsable → null.
func (c *ListingsCleaner) normalizeHostRates(df *models.Table) {
	for _, col := range hostRateColumns {
		if !df.Has(col) {
			continue
		}
		for _, r := range df.Rows() {
			r[col] = parsePercent(r[col])
		}
	}
}

func parsePercent(v any) any {
	if models.IsNull(v) {
		return nil
	}
	if f, ok := models.Float(v); ok {
		return f
	}
	s, ok := models.Str(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return f
}

// Step 2: host_response_time → host_response_speed category.
func (c *ListingsCleaner) mapResponseSpeed(df *models.Table) {
	if !df.Has("host_response_time") {
		return
	}
	df.AddColumn("host_response_speed")
	for _, r := range df.Rows() {
		speed := "Unknown"
		if s, ok := models.Str(r["host_response_time"]); ok {
			if mapped, known := responseSpeed[s]; known {
				speed = mapped
			}
		}
		r["host_response_speed"] = speed
	}
}

// Step 3: host_verifications list → one binary verif_<token> column per
// distinct token seen anywhere in the batch.
func (c *ListingsCleaner) expandVerifications(df *models.Table) {
	if !df.Has("host_verifications") {
		return
	}

	rows := df.Rows()
	parsed := make([][]string, len(rows))
	var order []string
	seen := make(map[string]struct{})
	for i, r := range rows {
		parsed[i] = parseTokenList(r["host_verifications"], false)
		for _, tok := range parsed[i] {
			if _, dup := seen[tok]; !dup {
				seen[tok] = struct{}{}
				order = append(order, tok)
			}
		}
	}

	for _, tok := range order {
		df.AddColumn("verif_" + tok)
	}
	for i, r := range rows {
		has := make(map[string]struct{}, len(parsed[i]))
		for _, tok := range parsed[i] {
			has[tok] = struct{}{}
		}
		for _, tok := range order {
			flag := 0
			if _, ok := has[tok]; ok {
				flag = 1
			}
			r["verif_"+tok] = flag
		}
	}
	df.Drop("host_verifications")
}

// Step 4: amenities → binary columns for the 12 globally most frequent
// values plus a per-row count, then the source column is dropped.
func (c *ListingsCleaner) expandAmenities(df *models.Table) {
	if !df.Has("amenities") {
		return
	}

	rows := df.Rows()
	parsed := make([][]string, len(rows))
	counts := make(map[string]int)
	var order []string
	for i, r := range rows {
		parsed[i] = parseTokenList(r["amenities"], true)
		for _, amen := range parsed[i] {
			if counts[amen] == 0 {
				order = append(order, amen)
			}
			counts[amen]++
		}
	}
	c.logger.Info("[listings] distinct amenities analyzed: %d", len(counts))

	top := topByCount(counts, order, topAmenities)
	cols := make([]string, len(top))
	for i, amen := range top {
		cols[i] = "amen_" + sanitizeAmenity(amen)
		df.AddColumn(cols[i])
	}
	df.AddColumn("amenities_count")

	for i, r := range rows {
		has := make(map[string]struct{}, len(parsed[i]))
		for _, amen := range parsed[i] {
			has[amen] = struct{}{}
		}
		for j, amen := range top {
			flag := 0
			if _, ok := has[amen]; ok {
				flag = 1
			}
			r[cols[j]] = flag
		}
		r["amenities_count"] = len(parsed[i])
	}
	df.Drop("amenities")
}

// topByCount ranks tokens by frequency descending, breaking ties by first
// appearance in the batch.
func topByCount(counts map[string]int, order []string, n int) []string {
	ranked := append([]string(nil), order...)
	// Stable selection: order already encodes first appearance, so a simple
	// stable sort by count keeps the tie-break.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && counts[ranked[j]] > counts[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func sanitizeAmenity(name string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "_", "-", "_", ".", "_")
	return replacer.Replace(name)
}

// Step 5: "$1,200.00" → 1200.0; rows with an unparsable price are dropped.
func (c *ListingsCleaner) cleanPrice(df *models.Table) {
	if !df.Has("price") {
		return
	}
	for _, r := range df.Rows() {
		r["price"] = parsePrice(r["price"])
	}
	before := df.Len()
	df.Filter(func(r models.Row) bool {
		return !models.IsNull(r["price"])
	})
	if dropped := before - df.Len(); dropped > 0 {
		c.logger.Warn("[listings] dropped %d rows with unparsable price", dropped)
	}
}

func parsePrice(v any) any {
	if models.IsNull(v) {
		return nil
	}
	if f, ok := models.Float(v); ok {
		return f
	}
	s, ok := models.Str(v)
	if !ok {
		return nil
	}
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return f
}

// Step 6: missing bedrooms/beds/bathrooms take the column median.
func (c *ListingsCleaner) imputeMedians(df *models.Table) {
	for _, col := range []string{"bedrooms", "beds", "bathrooms"} {
		if !df.Has(col) {
			continue
		}
		var values []float64
		hasNull := false
		for _, r := range df.Rows() {
			if models.IsNull(r[col]) {
				hasNull = true
			} else if f, ok := models.Float(r[col]); ok {
				values = append(values, f)
			}
		}
		if !hasNull {
			continue
		}
		median, ok := utils.Median(values)
		if !ok {
			continue
		}
		for _, r := range df.Rows() {
			if models.IsNull(r[col]) {
				r[col] = median
			}
		}
	}
}

// Step 7: review score columns and reviews_per_month default to 0.
func (c *ListingsCleaner) fillScores(df *models.Table) {
	for _, col := range scoreColumns {
		if !df.Has(col) {
			continue
		}
		for _, r := range df.Rows() {
			if models.IsNull(r[col]) {
				r[col] = 0.0
			}
		}
	}
}

// Step 8: has_availability → {0,1}. Missing values take the batch mode
// first; a string-typed column maps "t" → 1 and everything else → 0, a
// boolean column converts directly.
func (c *ListingsCleaner) normalizeAvailability(df *models.Table) {
	if !df.Has("has_availability") {
		return
	}
	rows := df.Rows()

	if mode, ok := columnMode(rows, "has_availability"); ok {
		for _, r := range rows {
			if models.IsNull(r["has_availability"]) {
				r["has_availability"] = mode
			}
		}
	}

	hasString := false
	allBool := true
	for _, r := range rows {
		switch r["has_availability"].(type) {
		case string:
			hasString = true
			allBool = false
		case bool:
		default:
			allBool = false
		}
	}

	switch {
	case hasString:
		for _, r := range rows {
			if s, ok := models.Str(r["has_availability"]); ok && s == "t" {
				r["has_availability"] = 1
			} else {
				r["has_availability"] = 0
			}
		}
	case allBool && len(rows) > 0:
		for _, r := range rows {
			if r["has_availability"].(bool) {
				r["has_availability"] = 1
			} else {
				r["has_availability"] = 0
			}
		}
	}
}

// columnMode returns the most frequent non-null value, breaking count ties
// by the lexicographically smaller rendering.
func columnMode(rows []models.Row, col string) (any, bool) {
	counts := make(map[any]int)
	for _, r := range rows {
		if !models.IsNull(r[col]) {
			counts[r[col]]++
		}
	}
	var mode any
	best := -1
	for v, n := range counts {
		if n > best || (n == best && render(v) < render(mode)) {
			mode, best = v, n
		}
	}
	return mode, best > 0
}

func render(v any) string {
	s, _ := models.Str(v)
	if s != "" {
		return s
	}
	if f, ok := models.Float(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if b, ok := v.(bool); ok {
		return strconv.FormatBool(b)
	}
	return ""
}

// Step 9: neighbourhood_cleaned = text before the first comma, diacritics
// folded to ASCII, lowercased and trimmed.
func (c *ListingsCleaner) cleanNeighbourhood(df *models.Table) {
	if !df.Has("neighbourhood") {
		return
	}
	df.AddColumn("neighbourhood_cleaned")
	for _, r := range df.Rows() {
		s, _ := models.Str(r["neighbourhood"])
		name, _, _ := strings.Cut(s, ",")
		r["neighbourhood_cleaned"] = strings.TrimSpace(strings.ToLower(utils.StripDiacritics(name)))
	}
}

// Step 10: sequential IQR filtering. Quantiles for each column are computed
// after the previous column's rows have been removed.
func (c *ListingsCleaner) filterOutliers(df *models.Table) {
	for _, col := range outlierColumns {
		if !df.Has(col) {
			continue
		}
		var values []float64
		for _, r := range df.Rows() {
			if f, ok := models.Float(r[col]); ok {
				values = append(values, f)
			}
		}
		q1, ok1 := utils.Quantile(0.25, values)
		q3, ok3 := utils.Quantile(0.75, values)
		if !ok1 || !ok3 {
			continue
		}
		iqr := q3 - q1
		lower, upper := q1-1.5*iqr, q3+1.5*iqr

		before := df.Len()
		df.Filter(func(r models.Row) bool {
			f, ok := models.Float(r[col])
			return ok && f >= lower && f <= upper
		})
		if dropped := before - df.Len(); dropped > 0 {
			c.logger.Debug("[listings] %s IQR filter [%.2f, %.2f] dropped %d rows",
				col, lower, upper, dropped)
		}
	}
}

// Step 11: fixed ceilings on rooms, beds and price.
func (c *ListingsCleaner) applyHardCaps(df *models.Table) {
	for _, rule := range hardCaps {
		if !df.Has(rule.col) {
			continue
		}
		limit := rule.limit
		col := rule.col
		df.Filter(func(r models.Row) bool {
			f, ok := models.Float(r[col])
			return ok && f <= limit
		})
	}
}

// parseTokenList normalizes the two encodings seen for list-valued fields:
// an actual array from the document store, or a literal-encoded string like
// "['email', 'phone']". For amenities (lower=true) a plain comma-delimited
// string is also accepted and every token is lowercased.
func parseTokenList(v any, lower bool) []string {
	normalize := func(items []string) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			it = strings.TrimSpace(it)
			if it == "" {
				continue
			}
			if lower {
				it = strings.ToLower(it)
			}
			out = append(out, it)
		}
		return out
	}

	switch val := v.(type) {
	case []string:
		return normalize(val)
	case []any:
		items := make([]string, 0, len(val))
		for _, it := range val {
			if s, ok := models.Str(it); ok {
				items = append(items, s)
			}
		}
		return normalize(items)
	case string:
		if items, ok := parseLiteralList(val); ok {
			return normalize(items)
		}
		if lower {
			return normalize(strings.Split(val, ","))
		}
	}
	return nil
}

// parseLiteralList parses "[...]" strings: JSON arrays first, then
// Python-style single-quoted lists. Returns false when the input is not a
// bracketed list of quoted items.
func parseLiteralList(s string) ([]string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}

	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err == nil {
		items := make([]string, 0, len(raw))
		for _, it := range raw {
			if str, ok := it.(string); ok {
				items = append(items, str)
			}
		}
		return items, true
	}

	inner := s[1 : len(s)-1]
	if strings.TrimSpace(inner) == "" {
		return nil, true
	}
	var items []string
	for _, part := range splitOutsideQuotes(inner) {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && (part[0] == '\'' || part[0] == '"') && part[len(part)-1] == part[0] {
			items = append(items, part[1:len(part)-1])
		} else {
			return nil, false
		}
	}
	return items, true
}

func splitOutsideQuotes(s string) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == ',':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
