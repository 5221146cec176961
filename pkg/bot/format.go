package bot

import (
	"fmt"
	"time"
)

// humanBytesPerSec renders a byte rate with a binary-scaled unit
func humanBytesPerSec(bps float64) string {
	if bps < 1024 {
		return fmt.Sprintf("%.0f B/s", bps)
	}
	kbps := bps / 1024
	if kbps < 1024 {
		return fmt.Sprintf("%.1f KB/s", kbps)
	}
	mbps := kbps / 1024
	if mbps < 1024 {
		return fmt.Sprintf("%.2f MB/s", mbps)
	}
	return fmt.Sprintf("%.2f GB/s", mbps/1024)
}

// formatUptime renders a duration as days/hours/minutes
func formatUptime(d time.Duration) string {
	d = d.Round(time.Minute)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
