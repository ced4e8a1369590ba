package service

import (
	"time"

	"procurement/internal/model"

	"github.com/shopspring/decimal"
)

func demoDay(month time.Month, day int) time.Time {
	return time.Date(2023, month, day, 0, 0, 0, 0, time.UTC)
}

func demoAmount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func demoQuote(id, supplier string, amount int64, cur model.Currency, term, notes string, selected bool) model.Quote {
	return model.Quote{
		ID:           id,
		Supplier:     supplier,
		Amount:       decimal.NewFromInt(amount),
		Currency:     cur,
		DeliveryTerm: term,
		Notes:        notes,
		Selected:     selected,
	}
}

func demoApproval(id, name string, date time.Time, level model.ApprovalLevel, note string, decision model.Decision) model.Approval {
	return model.Approval{
		ApproverID:   id,
		ApproverName: name,
		Date:         date,
		Note:         note,
		Level:        level,
		Decision:     decision,
	}
}

// demoRequests is the sample data a fresh portal starts with: two approved
// requests, two waiting for a quote, one half way through and one rejected.
func demoRequests() []model.PurchaseRequest {
	oct16 := demoDay(time.October, 16)
	oct13 := demoDay(time.October, 13)

	return []model.PurchaseRequest{
		{
			ID:                   "#PED-2023-0156",
			Date:                 demoDay(time.October, 15),
			Description:          "Material de escritório",
			Justification:        "Reposição de material de escritório para o departamento",
			Urgency:              model.UrgencyNormal,
			CostCenter:           "rh",
			Requester:            "Carlos Silva",
			Amount:               demoAmount(350),
			Currency:             model.CurrencyBRL,
			Status:               model.StatusApproved,
			CurrentApprovalLevel: model.LevelSecond,
			AmountDecided:        true,
			ApprovalDate:         &oct16,
			Quotes: []model.Quote{
				demoQuote("COT-001", "Papelaria Central", 350, model.CurrencyBRL, "5 dias úteis", "Inclui entrega gratuita", true),
				demoQuote("COT-002", "Office Supply", 380, model.CurrencyBRL, "3 dias úteis", "Produtos importados", false),
			},
			Approvals: []model.Approval{
				demoApproval("gerente1@empresa.com", "Roberto Silva", oct16, model.LevelFirst, "Aprovado conforme orçamento", model.DecisionApproved),
				demoApproval("gerente2@empresa.com", "Mariana Costa", oct16, model.LevelSecond, "Aprovação final", model.DecisionApproved),
			},
			Version: 1,
		},
		{
			ID:                   "#PED-2023-0155",
			Date:                 demoDay(time.October, 12),
			Description:          "Licença de software",
			Justification:        "Renovação anual da licença de software de design",
			Urgency:              model.UrgencyHigh,
			CostCenter:           "ti",
			Requester:            "Carlos Silva",
			Amount:               demoAmount(1200),
			Currency:             model.CurrencyBRL,
			Status:               model.StatusApproved,
			CurrentApprovalLevel: model.LevelSecond,
			AmountDecided:        true,
			ApprovalDate:         &oct13,
			Quotes: []model.Quote{
				demoQuote("COT-003", "Software House", 1200, model.CurrencyBRL, "Imediato", "Licença anual", true),
			},
			Approvals: []model.Approval{
				demoApproval("gerente1@empresa.com", "Roberto Silva", oct13, model.LevelFirst, "Aprovado conforme necessidade", model.DecisionApproved),
				demoApproval("gerente2@empresa.com", "Mariana Costa", oct13, model.LevelSecond, "Aprovação final", model.DecisionApproved),
			},
			Version: 1,
		},
		{
			ID:                   "#PED-2023-0157",
			Date:                 demoDay(time.October, 15),
			Description:          "Licença de software para design",
			Justification:        "Necessário para o novo projeto de marketing",
			Urgency:              model.UrgencyNormal,
			CostCenter:           "marketing",
			Requester:            "Ana Oliveira",
			Currency:             model.CurrencyUSD,
			Status:               model.StatusPending,
			CurrentApprovalLevel: model.LevelFirst,
			Quotes: []model.Quote{
				demoQuote("COT-004", "Design Pro", 230, model.CurrencyUSD, "Imediato", "Versão mais recente", false),
				demoQuote("COT-005", "Creative Tools", 240, model.CurrencyUSD, "Imediato", "Inclui plugins adicionais", false),
				demoQuote("COT-006", "Art Software", 220, model.CurrencyUSD, "2 dias úteis", "Versão básica", false),
			},
			Approvals: []model.Approval{},
			Version:   1,
		},
		{
			ID:                   "#PED-2023-0158",
			Date:                 demoDay(time.October, 14),
			Description:          "Equipamento para videoconferência",
			Justification:        "Melhorar a qualidade das reuniões remotas",
			Urgency:              model.UrgencyHigh,
			CostCenter:           "ti",
			Requester:            "João Mendes",
			Currency:             model.CurrencyUSD,
			Status:               model.StatusPending,
			CurrentApprovalLevel: model.LevelFirst,
			Quotes: []model.Quote{
				demoQuote("COT-007", "Tech Store", 670, model.CurrencyUSD, "7 dias úteis", "Modelo premium", false),
				demoQuote("COT-008", "Office Tech", 615, model.CurrencyUSD, "10 dias úteis", "Sem garantia estendida", false),
				demoQuote("COT-009", "Eletrônicos Pro", 730, model.CurrencyUSD, "5 dias úteis", "Inclui instalação", false),
			},
			Approvals: []model.Approval{},
			Version:   1,
		},
		{
			ID:                   "#PED-2023-0159",
			Date:                 demoDay(time.October, 16),
			Description:          "Serviços de consultoria em marketing",
			Justification:        "Desenvolvimento de nova estratégia de marketing digital",
			Urgency:              model.UrgencyNormal,
			CostCenter:           "marketing",
			Requester:            "Fernanda Lima",
			Amount:               demoAmount(4500),
			Currency:             model.CurrencyBRL,
			Status:               model.StatusPartiallyApproved,
			CurrentApprovalLevel: model.LevelSecond,
			AmountDecided:        true,
			Quotes: []model.Quote{
				demoQuote("COT-010", "Marketing Experts", 4500, model.CurrencyBRL, "30 dias", "Inclui relatório final", true),
				demoQuote("COT-011", "Digital Marketing Co.", 4800, model.CurrencyBRL, "25 dias", "Inclui implementação", false),
			},
			Approvals: []model.Approval{
				demoApproval("gerente1@empresa.com", "Roberto Silva", demoDay(time.October, 17), model.LevelFirst, "Aprovado na primeira etapa", model.DecisionApproved),
			},
			Version: 1,
		},
		{
			ID:                   "#PED-2023-0152",
			Date:                 demoDay(time.October, 10),
			Description:          "Mobiliário de escritório",
			Justification:        "Substituição de cadeiras ergonômicas",
			Urgency:              model.UrgencyNormal,
			CostCenter:           "rh",
			Requester:            "Maria Santos",
			Amount:               demoAmount(2800),
			Currency:             model.CurrencyBRL,
			Status:               model.StatusRejected,
			CurrentApprovalLevel: model.LevelFirst,
			AmountDecided:        true,
			RejectionNote:        "Orçamento acima do limite permitido para este tipo de item",
			Quotes: []model.Quote{
				demoQuote("COT-012", "Móveis Corporativos", 2800, model.CurrencyBRL, "15 dias úteis", "Cadeiras ergonômicas premium", true),
			},
			Approvals: []model.Approval{
				demoApproval("gerente1@empresa.com", "Roberto Silva", demoDay(time.October, 11), model.LevelFirst, "Rejeitado por exceder o orçamento", model.DecisionRejected),
			},
			Version: 1,
		},
	}
}
