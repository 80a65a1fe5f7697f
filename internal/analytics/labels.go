package analytics

import (
	"time"

	"saldo/internal/core"
)

// Labeler supplies display strings. The engine itself is locale-agnostic.
type Labeler interface {
	MonthLabel(t time.Time) string
	DayLabel(t time.Time) string
	CategoryName(c core.Category) string
}

// DefaultLabeler renders English labels and catalog names.
type DefaultLabeler struct{}

func (DefaultLabeler) MonthLabel(t time.Time) string       { return t.Format("Jan 2006") }
func (DefaultLabeler) DayLabel(t time.Time) string         { return t.Format("Jan 02") }
func (DefaultLabeler) CategoryName(c core.Category) string { return c.Name }

func labelerOrDefault(l Labeler) Labeler {
	if l == nil {
		return DefaultLabeler{}
	}
	return l
}
