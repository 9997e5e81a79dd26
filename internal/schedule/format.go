package schedule

import (
	"fmt"
	"time"
)

// FormatRemaining renders a duration using the coarsest non-zero unit:
// "2days 3hours 0minutes", "1hours 30minutes" or "30minutes".
// Every unit is truncated. Zero and negative durations render "0minutes".
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := int64(d / (24 * time.Hour))
	hours := int64(d % (24 * time.Hour) / time.Hour)
	minutes := int64(d % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%ddays %dhours %dminutes", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dhours %dminutes", hours, minutes)
	default:
		return fmt.Sprintf("%dminutes", minutes)
	}
}
