package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prospeto-crm/prospeto-crm/internal/proposals"
	"github.com/prospeto-crm/prospeto-crm/internal/quote"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "R$ 0,00"},
		{4500, "R$ 4.500,00"},
		{1234567.89, "R$ 1.234.567,89"},
		{215.5, "R$ 215,50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBRL(tt.value))
	}
}

func TestProposalDocument(t *testing.T) {
	clientName := "Padaria Central"
	created := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	installments := 3

	detail := &proposals.ProposalWithDetails{
		Proposal: proposals.Proposal{
			ID:                7,
			Title:             "Site & Loja <Virtual>",
			Notes:             "Condições especiais",
			IsValidityEnabled: true,
			ValidityDays:      15,
			InstallmentNumber: &installments,
			CreatedAt:         created,
			Services: []proposals.ProposalService{
				{ServiceID: 1, Name: "Site institucional", BasePrice: 3000, Quantity: 1, BillingType: quote.BillingOneTime},
				{ServiceID: 2, Name: "Gestão de tráfego", BasePrice: 1500, Quantity: 1, BillingType: quote.BillingMonthly},
			},
		},
		ClientName: &clientName,
	}
	summary := quote.Summary{
		Subtotal:              4500,
		MonthlyTotal:          1500,
		FinalTotal:            4500,
		TotalInstallmentValue: 4650,
	}

	doc := ProposalDocument(detail, summary)

	assert.Contains(t, doc, "Site &amp; Loja &lt;Virtual&gt;")
	assert.Contains(t, doc, "Padaria Central")
	assert.Contains(t, doc, "R$ 4.500,00")
	assert.Contains(t, doc, "Recorrência mensal: R$ 1.500,00")
	assert.Contains(t, doc, "3x de R$ 1.550,00")
	assert.Contains(t, doc, "(mensal)")
	assert.Contains(t, doc, "válida até 30/03/2026")
	assert.Contains(t, doc, "Condições especiais")
}
