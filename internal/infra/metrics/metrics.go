// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
