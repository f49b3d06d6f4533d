package workflow

import (
	"regexp"
	"strings"

	"bitbucket.org/mmdatafocus/resmatch_backend/config"
	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
)

var digitRunPattern = regexp.MustCompile(`\d+`)

// extractDigitRuns concatenates every digit run of a table label in order
// of appearance: "福禄1" -> "1", "A12-3" -> "123". Empty when the label
// carries no digits at all, and an empty result never equals another empty
// result at match time.
func extractDigitRuns(label string) string {
	return strings.Join(digitRunPattern.FindAllString(label, -1), "")
}

func roomKeywordSet(vocab *config.Vocabulary, label string) map[string]bool {
	lower := strings.ToLower(label)
	found := make(map[string]bool)
	for _, keyword := range vocab.RoomKeywords {
		if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
			found[keyword] = true
		}
	}
	return found
}

func keywordSetsIntersect(a, b map[string]bool) bool {
	for keyword := range a {
		if b[keyword] {
			return true
		}
	}
	return false
}

// MatchTableLabels runs the tiered comparison of a reservation-side and an
// order-side table identifier. Tiers in priority order, first hit wins:
// exact string equality, room keyword + digit match, digit-only match.
// The takeout variants tag matches whose order side carries a
// delivery/takeout keyword.
func MatchTableLabels(vocab *config.Vocabulary, reservationLabel, orderLabel string) (bool, models.MatchType) {
	if reservationLabel == orderLabel {
		return true, models.MatchTypeExact
	}

	reservationDigits := extractDigitRuns(reservationLabel)
	orderDigits := extractDigitRuns(orderLabel)
	digitsEqual := reservationDigits != "" && orderDigits != "" && reservationDigits == orderDigits
	orderIsTakeout := utils.ContainsAnyFold(orderLabel, vocab.TakeoutKeywords)

	if digitsEqual {
		reservationRooms := roomKeywordSet(vocab, reservationLabel)
		orderRooms := roomKeywordSet(vocab, orderLabel)
		if keywordSetsIntersect(reservationRooms, orderRooms) {
			if orderIsTakeout {
				return true, models.MatchTypeRoomTakeout
			}
			return true, models.MatchTypeRoom
		}
		if orderIsTakeout {
			return true, models.MatchTypeTakeout
		}
		return true, models.MatchTypeNumber
	}

	return false, models.MatchTypeUnmatched
}
