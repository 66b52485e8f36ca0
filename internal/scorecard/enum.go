package scorecard

type AutomationSource string

const (
	SourceTimeTracking AutomationSource = "time_tracking"
	SourceLeads        AutomationSource = "leads"
	SourceFinancial    AutomationSource = "financial"
	SourceCapacity     AutomationSource = "capacity"
)

type LeadType string

const (
	LeadNew             LeadType = "new"
	LeadQualified       LeadType = "qualified"
	LeadQuotesSubmitted LeadType = "quotes_submitted"
	LeadQuoteValue      LeadType = "quote_value"
)

type FinancialCalculation string

const (
	PercentOfQuarterlyTarget FinancialCalculation = "percent_of_quarterly_target"
	PercentProfitQTD         FinancialCalculation = "percent_profit_qtd"
	PipelineValue            FinancialCalculation = "pipeline_value"
)

// DefaultQualifiedStatuses applies to qualified lead metrics with no included_statuses.
var DefaultQualifiedStatuses = []string{"Qualified"}
