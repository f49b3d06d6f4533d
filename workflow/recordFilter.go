package workflow

import (
	"strings"

	"bitbucket.org/mmdatafocus/resmatch_backend/models"
)

// FilterRecords narrows the merged set by match status and by an
// alias-aware booker search: the search term is expanded to every spelling
// in its alias group, and any variant matching the stored canonical
// identity (case-insensitive substring) qualifies the record. Empty
// filters pass everything through.
func FilterRecords(sess *Session, status models.MatchStatus, search string) []*models.MatchedRecord {
	normalizer := models.NewIdentityNormalizer(sess.Vocabulary)
	terms := normalizer.ExpandSearchTerm(search)

	var result []*models.MatchedRecord
	for _, record := range sess.Merged {
		if status != "" && record.MatchStatus() != status {
			continue
		}
		if strings.TrimSpace(search) != "" && !matchesAnyTerm(record.BookerIdentity, terms) {
			continue
		}
		result = append(result, record)
	}
	return result
}

func matchesAnyTerm(identity string, terms []string) bool {
	lower := strings.ToLower(identity)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
