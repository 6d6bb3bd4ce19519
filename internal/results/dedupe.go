// File: internal/results/dedupe.go
package results

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/api/schemas"
)

const (
	signaturePrefixLen = 50
	minSignatureRunes  = 3
	mergeExcerptLen    = 100
	maxDescriptionLen  = 500
	descriptionJoiner  = " | "
)

// Signature derives the dedup key of a recommendation: the first 50 runes
// of "title description" in lower case, tokenized on whitespace, minus short
// tokens and stop words, sorted and joined with "|".
func Signature(title, description string) string {
	text := truncateRunes(strings.ToLower(title)+" "+strings.ToLower(description), signaturePrefixLen)

	fields := strings.Fields(text)
	tokens := fields[:0]
	for _, tok := range fields {
		if utf8.RuneCountInString(tok) < minSignatureRunes || isStopWord(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, "|")
}

// Deduplicate merges recommendations with identical signatures. The first
// occurrence of a signature is the anchor and keeps its position and ID;
// later occurrences are folded into it. The input slice is not modified.
func Deduplicate(recs []schemas.NormalizedRecommendation) []schemas.NormalizedRecommendation {
	out := make([]schemas.NormalizedRecommendation, 0, len(recs))
	anchors := make(map[string]int, len(recs))

	for _, rec := range recs {
		rec = canonical(rec)
		sig := Signature(rec.Title, rec.Description)
		if idx, ok := anchors[sig]; ok {
			out[idx] = merge(out[idx], rec)
			continue
		}
		anchors[sig] = len(out)
		out = append(out, rec)
	}
	return out
}

// canonical returns a copy of rec with enums clamped and slices detached
// from the caller's backing arrays.
func canonical(rec schemas.NormalizedRecommendation) schemas.NormalizedRecommendation {
	rec.Impact = clampLevel(string(rec.Impact))
	rec.Effort = clampLevel(string(rec.Effort))
	rec.Severity = clampSeverity(rec.Severity)
	rec.Sources = append([]string(nil), rec.Sources...)
	rec.MergedFrom = append([]string(nil), rec.MergedFrom...)
	return rec
}

// merge folds dup into anchor. Severity and impact take the maximum, effort
// and category stay with the anchor.
func merge(anchor, dup schemas.NormalizedRecommendation) schemas.NormalizedRecommendation {
	switch {
	case severityRanks[dup.Severity] > severityRanks[anchor.Severity]:
		anchor.Severity = dup.Severity
		anchor.SeverityInferred = dup.SeverityInferred
	case dup.Severity == anchor.Severity && !dup.SeverityInferred:
		anchor.SeverityInferred = false
	}
	anchor.Impact = maxLevel(anchor.Impact, dup.Impact)

	for _, src := range dup.Sources {
		if !anchor.HasSource(src) {
			anchor.Sources = append(anchor.Sources, src)
		}
	}
	anchor.MergedFrom = append(anchor.MergedFrom, dup.ID)
	anchor.MergedFrom = append(anchor.MergedFrom, dup.MergedFrom...)

	anchor.Description = appendExcerpt(anchor.Description, truncateRunes(dup.Description, mergeExcerptLen))
	return anchor
}

// appendExcerpt adds excerpt to a merged description. The result never
// exceeds maxDescriptionLen runes; the anchor's own text is kept in full up
// to that limit and only the excerpt is shortened to fit.
func appendExcerpt(description, excerpt string) string {
	if excerpt == "" || strings.Contains(description, excerpt) {
		return truncateRunes(description, maxDescriptionLen)
	}
	if description == "" {
		return truncateRunes(excerpt, maxDescriptionLen)
	}
	room := maxDescriptionLen - utf8.RuneCountInString(description) - utf8.RuneCountInString(descriptionJoiner)
	if room <= 0 {
		return truncateRunes(description, maxDescriptionLen)
	}
	return description + descriptionJoiner + truncateRunes(excerpt, room)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
