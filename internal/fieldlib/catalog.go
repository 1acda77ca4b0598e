package fieldlib

import "github.com/fundsight/pedocs/internal/model"

// builtinCatalog returns the hand-tuned default field definitions. Patterns
// are compiled case-insensitively; they are domain-specific and maintained per
// document type, not learned.
func builtinCatalog() map[model.DocType][]FieldDef {
	capitalAccount := []FieldDef{
		{
			Canonical: "beginning_balance",
			Type:      model.TypeDecimal,
			Required:  true,
			Patterns: []string{
				`beginning\s+balance[\s\(\):]+\$?\(?([\d.,]+)\)?`,
				`opening\s+balance[\s:]+\$?\(?([\d.,]+)\)?`,
				`balance[,\s]+beginning[\s:]+\$?\(?([\d.,]+)\)?`,
				`balance\s+at\s+beginning\s+of\s+period[\s:]+\$?\(?([\d.,]+)\)?`,
				`prior\s+period\s+ending\s+balance[\s:]+\$?\(?([\d.,]+)\)?`,
			},
			TableHeaders: []string{"Beginning Balance", "Opening Balance", "Balance, Beginning", "Prior Balance"},
		},
		{
			Canonical: "ending_balance",
			Type:      model.TypeDecimal,
			Required:  true,
			Patterns: []string{
				`ending\s+balance[\s\(\):]+\$?\(?([\d.,]+)\)?`,
				`closing\s+balance[\s:]+\$?\(?([\d.,]+)\)?`,
				`balance[,\s]+ending[\s:]+\$?\(?([\d.,]+)\)?`,
				`net\s+asset\s+value[\s:]+\$?\(?([\d.,]+)\)?`,
				`partner'?s?\s+capital[\s:]+\$?\(?([\d.,]+)\)?`,
			},
			TableHeaders: []string{"Ending Balance", "NAV", "Net Asset Value", "Balance, Ending", "Partner Capital"},
		},
		{
			Canonical: "contributions_period",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`total\s+contributions\s+this\s+period[\s:]+\$?([\d.,]+)`,
				`contributions\s+this\s+period[\s:]+\$?([\d.,]+)`,
				`capital\s+calls?[\s:]+\$?([\d.,]+)`,
				`contributions?[\s:]+\$?([\d.,]+)\s*\n`,
				`additional\s+capital[\s:]+\$?([\d.,]+)`,
			},
			TableHeaders: []string{"Contributions", "Capital Calls", "Paid-in Capital", "Capital Contributions"},
		},
		{
			Canonical:  "distributions_period",
			Type:       model.TypeDecimal,
			Components: []string{"distributions_roc_period", "distributions_gain_period", "distributions_income_period", "distributions_tax_period"},
			Patterns: []string{
				`total\s+distributions\s+this\s+period[\s:]+\$?\(?([\d.,]+)\)?`,
				`distributions\s+this\s+period[\s:]+\$?\(?([\d.,]+)\)?`,
				`cash\s+distributions?[\s:]+\$?\(?([\d.,]+)\)?`,
				`distributions?[\s:]+\$?\(?([\d.,]+)\)?\s*\n`,
			},
			TableHeaders: []string{"Distributions", "Cash Distributions", "Proceeds", "Total Distributions"},
		},
		{
			Canonical: "distributions_roc_period",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`return\s+of\s+capital[\s:]+\$?\(?([\d.,]+)\)?`,
				`capital\s+returned?[\s:]+\$?\(?([\d.,]+)\)?`,
			},
			TableHeaders: []string{"Return of Capital", "ROC", "Capital Return"},
		},
		{
			Canonical: "distributions_gain_period",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`realized\s+gains?\s+distribut\w+[\s:]+\$?\(?([\d.,]+)\)?`,
				`gains?\s+distributions?[\s:]+\$?\(?([\d.,]+)\)?`,
				`capital\s+gains?[\s:]+\$?\(?([\d.,]+)\)?`,
			},
			TableHeaders: []string{"Realized Gains", "Gains", "Capital Gains", "Gain Distributions"},
		},
		{
			Canonical: "distributions_income_period",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`income\s+distributions?[\s:]+\$?\(?([\d.,]+)\)?`,
				`dividends?[\s:]+\$?\(?([\d.,]+)\)?`,
				`interest\s+income[\s:]+\$?\(?([\d.,]+)\)?`,
			},
			TableHeaders: []string{"Income", "Dividends", "Interest", "Income Distributions"},
		},
		{
			Canonical: "distributions_tax_period",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`tax\s+withholding[\s:]+\$?\(?([\d.,]+)\)?`,
				`withholding\s+tax(?:es)?[\s:]+\$?\(?([\d.,]+)\)?`,
			},
			TableHeaders: []string{"Tax Withholding", "Withholding"},
		},
		{
			Canonical: "management_fees_period",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`management\s+fee\s*\([^)]*%\)[\s:]+\$?\(?([\d.,]+)\)?`,
				`management\s+fees?[\s:]+\$?\(?([\d.,]+)\)?`,
				`mgmt\s+fees?[\s:]+\$?\(?([\d.,]+)\)?`,
				`advisory\s+fees?[\s:]+\$?\(?([\d.,]+)\)?`,
			},
			TableHeaders: []string{"Management Fees", "Mgmt Fees", "Advisory Fees"},
		},
		{
			Canonical: "partnership_expenses_period",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`total\s+partnership\s+expenses[\s:]+\$?\(?([\d.,]+)\)?`,
				`partnership\s+expenses?[\s:]+\$?\(?([\d.,]+)\)?`,
				`fund\s+expenses?[\s:]+\$?\(?([\d.,]+)\)?`,
				`operating\s+expenses?[\s:]+\$?\(?([\d.,]+)\)?`,
			},
			TableHeaders: []string{"Partnership Expenses", "Fund Expenses", "Operating Expenses"},
		},
		{
			Canonical: "realized_gain_loss_period",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`realized\s+gain/?\(?loss\)?[\s:]+\$?(\(?[\d.,-]+\)?)`,
				`net\s+realized[\s:]+\$?(\(?[\d.,-]+\)?)`,
			},
			TableHeaders: []string{"Realized Gain/(Loss)", "Realized G/(L)", "Net Realized"},
		},
		{
			Canonical: "unrealized_gain_loss_period",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`unrealized\s+gain/?\(?loss\)?[\s:]+\$?(\(?[\d.,-]+\)?)`,
				`change\s+in\s+unrealized[\s:]+\$?(\(?[\d.,-]+\)?)`,
			},
			TableHeaders: []string{"Unrealized Gain/(Loss)", "Unrealized G/(L)", "Change in Unrealized"},
		},
		{
			Canonical: "total_commitment",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`total\s+commitment[\s:]+\$?([\d.,]+)`,
				`committed\s+capital[\s:]+\$?([\d.,]+)`,
				`commitment\s+amount[\s:]+\$?([\d.,]+)`,
			},
			TableHeaders: []string{"Total Commitment", "Committed Capital", "Commitment"},
		},
		{
			Canonical: "drawn_commitment",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`drawn\s+commitment[\s:]+\$?([\d.,]+)`,
				`called\s+commitment[\s:]+\$?([\d.,]+)`,
				`paid[\s-]in\s+capital[\s:]+\$?([\d.,]+)`,
				`cumulative\s+contributions[\s:]+\$?([\d.,]+)`,
			},
			TableHeaders: []string{"Drawn Commitment", "Called Commitment", "Paid-In Capital"},
		},
		{
			Canonical: "unfunded_commitment",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`unfunded\s+commitment[\s:]+\$?([\d.,]+)`,
				`remaining\s+commitment[\s:]+\$?([\d.,]+)`,
				`undrawn\s+commitment[\s:]+\$?([\d.,]+)`,
			},
			TableHeaders: []string{"Unfunded Commitment", "Remaining Commitment", "Undrawn"},
		},
		{
			Canonical: "ownership_pct",
			Type:      model.TypePercentage,
			Patterns: []string{
				`ownership\s+percentage[\s:]+([\d.]+)\s*%`,
				`ownership[\s:]+([\d.]+)\s*%`,
				`percentage\s+interest[\s:]+([\d.]+)\s*%`,
			},
			TableHeaders: []string{"Ownership %", "Interest %", "Percentage Interest"},
		},
		{
			Canonical: "as_of_date",
			Type:      model.TypeDate,
			Required:  true,
			Patterns: []string{
				`as\s+of\s+(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`,
				`as\s+of\s+([a-z]+\s+\d{1,2},?\s+\d{4})`,
				`statement\s+date[\s:]+(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`,
				`period\s+end(?:ing)?[\s:]+(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`,
				`quarter\s+end(?:ing)?\s+([a-z]+\s+\d{1,2},?\s+\d{4})`,
				`(\d{4}-\d{1,2}-\d{1,2})`,
				`(q[1-4]\s+\d{4})`,
			},
			TableHeaders: []string{"As of Date", "Statement Date", "Reporting Date", "Period End", "Date"},
		},
	}

	report := []FieldDef{
		{
			Canonical: "nav",
			Type:      model.TypeDecimal,
			Required:  true,
			Patterns: []string{
				`net\s+asset\s+value[\s:]+\$?\(?([\d.,]+)\)?`,
				`nav[\s:]+\$?\(?([\d.,]+)\)?`,
				`ending\s+balance[\s:]+\$?\(?([\d.,]+)\)?`,
				`total\s+net\s+assets[\s:]+\$?\(?([\d.,]+)\)?`,
			},
			TableHeaders: []string{"NAV", "Net Asset Value", "Total Net Assets", "Ending Balance"},
		},
		{
			Canonical:    "irr",
			Type:         model.TypePercentage,
			Patterns:     []string{`(?:net\s+)?irr[\s:]+(-?[\d.]+)\s*%`},
			TableHeaders: []string{"IRR", "Net IRR"},
		},
		{
			Canonical:    "moic",
			Type:         model.TypeDecimal,
			Patterns:     []string{`moic[\s:]+([\d.]+)x?`, `multiple\s+on\s+invested\s+capital[\s:]+([\d.]+)x?`},
			TableHeaders: []string{"MOIC", "Multiple"},
		},
		{
			Canonical:    "tvpi",
			Type:         model.TypeDecimal,
			Patterns:     []string{`tvpi[\s:]+([\d.]+)x?`, `total\s+value\s+to\s+paid[\s-]in[\s:]+([\d.]+)x?`},
			TableHeaders: []string{"TVPI"},
		},
		{
			Canonical:    "dpi",
			Type:         model.TypeDecimal,
			Patterns:     []string{`dpi[\s:]+([\d.]+)x?`, `distributions?\s+to\s+paid[\s-]in[\s:]+([\d.]+)x?`},
			TableHeaders: []string{"DPI"},
		},
		{
			Canonical:    "rvpi",
			Type:         model.TypeDecimal,
			Patterns:     []string{`rvpi[\s:]+([\d.]+)x?`, `residual\s+value\s+to\s+paid[\s-]in[\s:]+([\d.]+)x?`},
			TableHeaders: []string{"RVPI"},
		},
		{
			Canonical: "total_commitment",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`total\s+commitments?[\s:]+\$?([\d.,]+)`,
				`committed\s+capital[\s:]+\$?([\d.,]+)`,
			},
			TableHeaders: []string{"Total Commitment", "Committed Capital"},
		},
		{
			Canonical: "unfunded_commitment",
			Type:      model.TypeDecimal,
			Patterns: []string{
				`unfunded\s+commitments?[\s:]+\$?([\d.,]+)`,
				`remaining\s+commitments?[\s:]+\$?([\d.,]+)`,
			},
			TableHeaders: []string{"Unfunded Commitment", "Remaining Commitment"},
		},
		{
			Canonical: "as_of_date",
			Type:      model.TypeDate,
			Required:  true,
			Patterns: []string{
				`as\s+of\s+(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`,
				`as\s+of\s+([a-z]+\s+\d{1,2},?\s+\d{4})`,
				`(?:three|twelve)\s+months\s+ended\s+([a-z]+\s+\d{1,2},?\s+\d{4})`,
				`(q[1-4]\s+\d{4})`,
				`(\d{4}-\d{1,2}-\d{1,2})`,
			},
			TableHeaders: []string{"As of Date", "Period End", "Date"},
		},
	}

	callNotice := []FieldDef{
		{
			Canonical: "call_amount",
			Type:      model.TypeDecimal,
			Required:  true,
			Patterns: []string{
				`call\s+amount[\s:]+\$?([\d.,]+)`,
				`capital\s+call(?:\s+#?\d+)?[\s:]+\$?([\d.,]+)`,
				`amount\s+due[\s:]+\$?([\d.,]+)`,
				`contribution\s+amount[\s:]+\$?([\d.,]+)`,
			},
			TableHeaders: []string{"Call Amount", "Amount Due", "Contribution Amount"},
		},
		{
			Canonical: "due_date",
			Type:      model.TypeDate,
			Required:  true,
			Patterns: []string{
				`due\s+date[\s:]+(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`,
				`due\s+date[\s:]+([a-z]+\s+\d{1,2},?\s+\d{4})`,
				`payable\s+(?:on\s+or\s+before|by)[\s:]+([a-z]+\s+\d{1,2},?\s+\d{4})`,
			},
			TableHeaders: []string{"Due Date", "Payment Due"},
		},
		{
			Canonical:    "total_commitment",
			Type:         model.TypeDecimal,
			Patterns:     []string{`total\s+commitment[\s:]+\$?([\d.,]+)`},
			TableHeaders: []string{"Total Commitment"},
		},
		{
			Canonical:    "unfunded_commitment",
			Type:         model.TypeDecimal,
			Patterns:     []string{`unfunded\s+commitment(?:\s+after\s+this\s+call)?[\s:]+\$?([\d.,]+)`},
			TableHeaders: []string{"Unfunded Commitment"},
		},
	}

	distNotice := []FieldDef{
		{
			Canonical:  "distribution_amount",
			Type:       model.TypeDecimal,
			Required:   true,
			Components: []string{"return_of_capital", "realized_gains", "income", "tax_withholding"},
			Patterns: []string{
				`(?:total\s+)?distribution\s+amount[\s:]+\$?([\d.,]+)`,
				`total\s+distribution[\s:]+\$?([\d.,]+)`,
				`proceeds[\s:]+\$?([\d.,]+)`,
			},
			TableHeaders: []string{"Distribution Amount", "Total Distribution", "Proceeds"},
		},
		{
			Canonical: "payment_date",
			Type:      model.TypeDate,
			Required:  true,
			Patterns: []string{
				`payment\s+date[\s:]+(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`,
				`payment\s+date[\s:]+([a-z]+\s+\d{1,2},?\s+\d{4})`,
				`payable\s+on[\s:]+([a-z]+\s+\d{1,2},?\s+\d{4})`,
			},
			TableHeaders: []string{"Payment Date", "Distribution Date"},
		},
		{
			Canonical:    "return_of_capital",
			Type:         model.TypeDecimal,
			Patterns:     []string{`return\s+of\s+capital[\s:]+\$?([\d.,]+)`},
			TableHeaders: []string{"Return of Capital", "ROC"},
		},
		{
			Canonical:    "realized_gains",
			Type:         model.TypeDecimal,
			Patterns:     []string{`realized\s+gains?[\s:]+\$?([\d.,]+)`, `capital\s+gains?[\s:]+\$?([\d.,]+)`},
			TableHeaders: []string{"Realized Gains", "Capital Gains"},
		},
		{
			Canonical:    "income",
			Type:         model.TypeDecimal,
			Patterns:     []string{`income[\s:]+\$?([\d.,]+)`, `dividend\s+income[\s:]+\$?([\d.,]+)`},
			TableHeaders: []string{"Income", "Dividend Income"},
		},
		{
			Canonical:    "tax_withholding",
			Type:         model.TypeDecimal,
			Patterns:     []string{`tax\s+withholding[\s:]+\$?([\d.,]+)`, `withholding[\s:]+\$?([\d.,]+)`},
			TableHeaders: []string{"Tax Withholding", "Withholding"},
		},
	}

	subscription := []FieldDef{
		{
			Canonical: "commitment_amount",
			Type:      model.TypeDecimal,
			Required:  true,
			Patterns: []string{
				`commitment\s+amount[\s:]+\$?([\d.,]+)`,
				`capital\s+commitment[\s:]+\$?([\d.,]+)`,
				`subscrib\w+\s+(?:for|amount)[\s:]+\$?([\d.,]+)`,
			},
			TableHeaders: []string{"Commitment Amount", "Capital Commitment", "Subscription Amount"},
		},
		{
			Canonical: "investor_name",
			Type:      model.TypeString,
			Patterns: []string{
				`investor\s+name[\s:]+([^\n]+)`,
				`name\s+of\s+(?:subscriber|investor)[\s:]+([^\n]+)`,
			},
			TableHeaders: []string{"Investor Name", "Subscriber"},
		},
		{
			Canonical: "fund_name",
			Type:      model.TypeString,
			Patterns: []string{
				`fund\s+name[\s:]+([^\n]+)`,
				`(?:the\s+)?partnership[\s:]+([^\n]+)`,
			},
			TableHeaders: []string{"Fund Name", "Fund"},
		},
	}

	agreement := []FieldDef{
		{
			Canonical: "fund_name",
			Type:      model.TypeString,
			Patterns: []string{
				`fund\s+name[\s:]+([^\n]+)`,
				`([A-Z][\w\s,.]+(?:fund|partners|capital)[\w\s,.]*L\.?P\.?)`,
			},
			TableHeaders: []string{"Fund Name"},
		},
		{
			Canonical:    "management_fee_pct",
			Type:         model.TypePercentage,
			Patterns:     []string{`management\s+fee[\s\w]*?[\s:]+([\d.]+)\s*%`},
			TableHeaders: []string{"Management Fee"},
		},
		{
			Canonical:    "carried_interest_pct",
			Type:         model.TypePercentage,
			Patterns:     []string{`carried\s+interest[\s\w]*?[\s:]+([\d.]+)\s*%`, `carry[\s:]+([\d.]+)\s*%`},
			TableHeaders: []string{"Carried Interest", "Carry"},
		},
		{
			Canonical:    "hurdle_rate_pct",
			Type:         model.TypePercentage,
			Patterns:     []string{`hurdle\s+rate[\s:]+([\d.]+)\s*%`, `preferred\s+return[\s:]+([\d.]+)\s*%`},
			TableHeaders: []string{"Hurdle Rate", "Preferred Return"},
		},
		{
			Canonical:    "fund_term_years",
			Type:         model.TypeInteger,
			Patterns:     []string{`term\s+of\s+(?:the\s+)?(?:fund|partnership)[\s:]+(\d+)\s+years`, `(\d+)[\s-]year\s+term`},
			TableHeaders: []string{"Fund Term"},
		},
		{
			Canonical:    "minimum_commitment",
			Type:         model.TypeDecimal,
			Patterns:     []string{`minimum\s+(?:capital\s+)?commitment[\s:]+\$?([\d.,]+)`, `minimum\s+(?:subscription|investment)[\s:]+\$?([\d.,]+)`},
			TableHeaders: []string{"Minimum Commitment", "Minimum Investment"},
		},
	}

	return map[model.DocType][]FieldDef{
		model.DocTypeCapitalAccount:     capitalAccount,
		model.DocTypeQuarterlyReport:    report,
		model.DocTypeAnnualReport:       report,
		model.DocTypeCapitalCallNotice:  callNotice,
		model.DocTypeDistributionNotice: distNotice,
		model.DocTypeSubscription:       subscription,
		model.DocTypeLPA:                agreement,
		model.DocTypePPM:                agreement,
	}
}
