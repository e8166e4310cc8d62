package model

import (
	"math"
	"strconv"
	"strings"

	"telegram-post-scheduler/internal/domain"
)

// MinIntervalSeconds is the smallest posting interval a schedule accepts.
const MinIntervalSeconds = 5

// Validation reason keys, also used as translation keys.
const (
	ReasonIntervalFormat  = "error_interval_format"
	ReasonIntervalMinimum = "error_interval_minimum"
	ReasonIntervalUnset   = "error_interval_unset"
	ReasonWrongContent    = "error_wrong_content"
	ReasonEmptySchedule   = "error_empty_schedule"
)

var unitSeconds = map[byte]int{'s': 1, 'm': 60, 'h': 3600}

// ParseInterval turns a token such as "10s", "5m" or "1h" into seconds.
// The grammar is one or more ASCII digits followed by a lower-case unit.
func ParseInterval(token string) (int, error) {
	token = strings.TrimSpace(token)
	if len(token) < 2 {
		return 0, domain.NewValidationError(ReasonIntervalFormat)
	}
	mult, ok := unitSeconds[token[len(token)-1]]
	if !ok {
		return 0, domain.NewValidationError(ReasonIntervalFormat)
	}
	digits := token[:len(token)-1]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, domain.NewValidationError(ReasonIntervalFormat)
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, domain.NewValidationError(ReasonIntervalFormat)
	}
	if n <= 0 {
		return 0, domain.NewValidationError(ReasonIntervalMinimum)
	}
	if n > math.MaxInt32/mult {
		return 0, domain.NewValidationError(ReasonIntervalFormat)
	}
	seconds := n * mult
	if seconds < MinIntervalSeconds {
		return 0, domain.NewValidationError(ReasonIntervalMinimum)
	}
	return seconds, nil
}
