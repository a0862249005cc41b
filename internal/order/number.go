package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNumber returns an identifier like ORD-20251116-3FA9C2: the
// order date followed by six random hex digits.
func GenerateOrderNumber(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + now.Format("20060102") + "-" + strings.ToUpper(id[len(id)-6:])
}
