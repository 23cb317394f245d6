package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const tokenLen = 9

// NewOrderNumber: ORD-{timestamp ms}-{token acak 9 char}. Uniqueness
// probabilistik; unique constraint di kolom order_number jadi backstop.
func NewOrderNumber(now time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:tokenLen]
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), token)
}
