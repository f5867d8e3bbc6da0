package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/prospeto-crm/prospeto-crm/internal/proposals"
	"github.com/prospeto-crm/prospeto-crm/internal/quote"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a monetary value the way the proposal documents
// show it: R$ prefix, pt-BR digit grouping, always two decimals.
func FormatBRL(v float64) string {
	return ptBR.Sprintf("R$ %v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}

// ProposalDocument builds the printable HTML for a proposal. The same
// totals shown in the share view feed the PDF: frozen line items
// re-aggregated through the engine, handed in by the caller.
func ProposalDocument(p *proposals.ProposalWithDetails, summary quote.Summary) string {
	var b strings.Builder

	b.WriteString("<html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(p.Title))
	b.WriteString("</title><style>")
	b.WriteString("body{font-family:sans-serif;margin:40px;color:#1a1a2e}")
	b.WriteString("table{width:100%;border-collapse:collapse;margin:24px 0}")
	b.WriteString("th,td{text-align:left;padding:8px 4px;border-bottom:1px solid #ddd}")
	b.WriteString("td.num,th.num{text-align:right}")
	b.WriteString(".total{font-size:1.3em;font-weight:bold}")
	b.WriteString("</style></head><body>")

	b.WriteString("<h1>")
	b.WriteString(html.EscapeString(p.Title))
	b.WriteString("</h1>")

	if p.ClientName != nil {
		b.WriteString("<p>Cliente: ")
		b.WriteString(html.EscapeString(*p.ClientName))
		b.WriteString("</p>")
	}
	b.WriteString("<p>Data: ")
	b.WriteString(p.CreatedAt.Format("02/01/2006"))
	b.WriteString("</p>")

	b.WriteString("<table><thead><tr>")
	b.WriteString("<th>Serviço</th><th class=\"num\">Qtd</th><th class=\"num\">Valor unitário</th><th class=\"num\">Desconto</th><th class=\"num\">Total</th>")
	b.WriteString("</tr></thead><tbody>")
	for _, line := range quoteLines(p.Services) {
		b.WriteString("<tr><td>")
		b.WriteString(html.EscapeString(line.Name))
		if line.BillingType == quote.BillingMonthly {
			b.WriteString(" <small>(mensal)</small>")
		}
		b.WriteString("</td><td class=\"num\">")
		fmt.Fprintf(&b, "%d", line.Quantity)
		b.WriteString("</td><td class=\"num\">")
		b.WriteString(FormatBRL(line.UnitPrice()))
		b.WriteString("</td><td class=\"num\">")
		b.WriteString(FormatBRL(line.Discount))
		b.WriteString("</td><td class=\"num\">")
		b.WriteString(FormatBRL(line.LineTotal()))
		b.WriteString("</td></tr>")
	}
	b.WriteString("</tbody></table>")

	if summary.MonthlyTotal > 0 {
		b.WriteString("<p>Recorrência mensal: ")
		b.WriteString(FormatBRL(summary.MonthlyTotal))
		b.WriteString("</p>")
	}
	if summary.TotalInstallmentValue > 0 && p.InstallmentNumber != nil {
		fmt.Fprintf(&b, "<p>Parcelamento: %dx de %s (total %s)</p>",
			*p.InstallmentNumber,
			FormatBRL(summary.TotalInstallmentValue/float64(*p.InstallmentNumber)),
			FormatBRL(summary.TotalInstallmentValue))
	}

	b.WriteString("<p class=\"total\">Total: ")
	b.WriteString(FormatBRL(summary.FinalTotal))
	b.WriteString("</p>")

	if p.Notes != "" {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p.Notes))
		b.WriteString("</p>")
	}

	if p.IsValidityEnabled && p.ValidityDays > 0 {
		validUntil := p.CreatedAt.AddDate(0, 0, p.ValidityDays)
		b.WriteString("<p><small>Proposta válida até ")
		b.WriteString(validUntil.Format("02/01/2006"))
		b.WriteString("</small></p>")
	}

	b.WriteString("<p><small>Gerado em ")
	b.WriteString(time.Now().Format("02/01/2006 15:04"))
	b.WriteString("</small></p>")
	b.WriteString("</body></html>")

	return b.String()
}

// quoteLines mirrors the share view rebuild: frozen snapshots become
// engine lines so unit prices and line totals come from one place.
func quoteLines(services []proposals.ProposalService) []quote.SelectedService {
	lines := make([]quote.SelectedService, 0, len(services))
	for _, s := range services {
		lines = append(lines, quote.SelectedService{
			Service: quote.Service{
				ID:          s.ServiceID,
				Name:        s.Name,
				BasePrice:   s.BasePrice,
				BillingType: s.BillingType,
			},
			Quantity:           s.Quantity,
			CustomPrice:        s.CustomPrice,
			Discount:           s.Discount,
			DiscountPercentage: s.DiscountPercentage,
			DiscountType:       s.DiscountType,
		})
	}
	return lines
}
