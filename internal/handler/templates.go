package handler

import (
	"html/template"
	"strconv"

	"payswiftly/web"
)

// Templates parses the page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"kes":   formatAmount,
		"money": formatMoney,
	}).ParseFS(web.Templates, "templates/*.html")
}

// MustTemplates is like Templates but panics on a broken template.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// formatAmount prints an amount the way it was entered: 500, 12.5.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatMoney prints a balance with two decimals: KES 1200.00.
func formatMoney(v float64) string {
	return "KES " + strconv.FormatFloat(v, 'f', 2, 64)
}
