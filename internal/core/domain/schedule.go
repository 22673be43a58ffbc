package domain

import "github.com/robfig/cron/v3"

// IsValidSchedule reports whether s is a standard 5-field cron expression
// (minute hour dom month dow).
func IsValidSchedule(s string) bool {
	if s == "" {
		return false
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(s)
	return err == nil
}
