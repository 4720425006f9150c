package domain

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration the way the leave notification and the
// daily summary show it: seconds only under a minute, minutes+seconds under
// an hour, otherwise hours+minutes+seconds with zero-valued lower units kept.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int(d.Seconds())
	switch {
	case total < 60:
		return fmt.Sprintf("%d秒", total)
	case total < 3600:
		return fmt.Sprintf("%d分%d秒", total/60, total%60)
	default:
		return fmt.Sprintf("%d時間%d分%d秒", total/3600, (total%3600)/60, total%60)
	}
}
