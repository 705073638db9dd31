package manifest

import (
	"sort"
	"strconv"
)

// 🗺️ fieldAccessors maps template placeholder names to accessors over a
// Record. The set is closed on purpose: template resolution never reflects
// over the struct, and placeholders outside this map get the unknown-field
// fallback.
var fieldAccessors = map[string]func(Record) string{
	"author":           func(r Record) string { return r.Author },
	"narrated_by":      func(r Record) string { return r.NarratedBy },
	"title":            func(r Record) string { return r.Title },
	"title_short":      func(r Record) string { return r.TitleShort },
	"asin":             func(r Record) string { return r.ASIN },
	"isbn":             func(r Record) string { return r.ISBN },
	"publisher":        func(r Record) string { return r.Publisher },
	"purchase_date":    func(r Record) string { return r.PurchaseDate },
	"release_date":     func(r Record) string { return r.ReleaseDate },
	"genre":            func(r Record) string { return r.Genre },
	"series_name":      func(r Record) string { return r.SeriesName },
	"series_sequence":  func(r Record) string { return r.SeriesSequence },
	"language":         func(r Record) string { return r.Language },
	"rating_average":   func(r Record) string { return strconv.FormatFloat(r.RatingAverage, 'f', -1, 64) },
	"duration_minutes": func(r Record) string { return strconv.Itoa(r.DurationMinutes) },
}

// 🔍 Field looks up the string form of a named record field. The second
// return value reports whether the name is a recognized field.
func (r Record) Field(name string) (string, bool) {
	accessor, ok := fieldAccessors[name]
	if !ok {
		return "", false
	}
	return accessor(r), true
}

// 📝 FieldNames returns the recognized placeholder names, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(fieldAccessors))
	for name := range fieldAccessors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
