package format

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"saldo/internal/core"
)

var spanishMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

var spanishCategories = map[string]string{
	"food":               "Alimentación",
	"transport":          "Transporte",
	"entertainment":      "Entretenimiento",
	"health":             "Salud",
	"education":          "Educación",
	"otherExpenses":      "Otros Gastos",
	"salary":             "Salario",
	"freelance":          "Trabajo Independiente",
	"investments":        "Inversiones",
	"otherIncome":        "Otros Ingresos",
	core.UncategorizedID: "Sin categoría",
}

// Labels renders month, day and category labels in one language. It
// satisfies analytics.Labeler.
type Labels struct {
	lang language.Tag
}

func NewLabels(lang string) Labels {
	return Labels{lang: MatchLanguage(lang)}
}

// Locale is the short language code, used to key cached reports.
func (l Labels) Locale() string {
	base, _ := l.lang.Base()
	return base.String()
}

func (l Labels) MonthLabel(t time.Time) string {
	if l.lang == language.Spanish {
		return fmt.Sprintf("%s %d", spanishMonths[t.Month()-1], t.Year())
	}
	return t.Format("Jan 2006")
}

func (l Labels) DayLabel(t time.Time) string {
	if l.lang == language.Spanish {
		return fmt.Sprintf("%02d %s", t.Day(), spanishMonths[t.Month()-1])
	}
	return t.Format("Jan 02")
}

func (l Labels) CategoryName(c core.Category) string {
	if l.lang == language.Spanish {
		if name, ok := spanishCategories[c.ID]; ok {
			return name
		}
	}
	return c.Name
}
