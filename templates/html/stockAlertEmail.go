// Package templates holds the HTML bodies for the pharmacy alert emails.
package templates

import (
	"fmt"
	"html"
	"strings"

	"github.com/character8/medicx-clinic-central-main/models"
)

// RenderStockAlertEmail builds the daily pharmacy alert: medicines expiring
// soon and medicines whose derived stock fell below the threshold, framed in
// the shared clinic layout. Either list may be empty; the caller skips
// sending when both are.
func RenderStockAlertEmail(subject string, expiring []models.Medicine, lowStock []models.Medicine, threshold int) string {
	var b strings.Builder

	if len(expiring) > 0 {
		b.WriteString(`<h3 style="margin-top:0">Expiring within 30 days</h3>`)
		b.WriteString(medicineTable(expiring, func(m models.Medicine) string {
			return html.EscapeString(m.ExpiryDate)
		}, "Expiry"))
	}

	if len(lowStock) > 0 {
		b.WriteString(fmt.Sprintf(`<h3>Stock below %d units</h3>`, threshold))
		b.WriteString(medicineTable(lowStock, func(m models.Medicine) string {
			return fmt.Sprintf("%d", m.TotalQuantity)
		}, "Remaining"))
	}

	return wrapBranded(subject, b.String())
}

func medicineTable(medicines []models.Medicine, detail func(models.Medicine) string, detailHeader string) string {
	var b strings.Builder
	b.WriteString(`<table style="width:100%;border-collapse:collapse;margin-bottom:24px">`)
	b.WriteString(fmt.Sprintf(`<tr><th align="left" style="border-bottom:1px solid #e5e7eb;padding:6px">#</th><th align="left" style="border-bottom:1px solid #e5e7eb;padding:6px">Medicine</th><th align="left" style="border-bottom:1px solid #e5e7eb;padding:6px">Category</th><th align="left" style="border-bottom:1px solid #e5e7eb;padding:6px">%s</th></tr>`, html.EscapeString(detailHeader)))
	for _, m := range medicines {
		b.WriteString(fmt.Sprintf(`<tr><td style="padding:6px">%d</td><td style="padding:6px">%s</td><td style="padding:6px">%s</td><td style="padding:6px">%s</td></tr>`,
			m.SerialNumber,
			html.EscapeString(m.Name),
			html.EscapeString(m.Category),
			detail(m),
		))
	}
	b.WriteString(`</table>`)
	return b.String()
}
