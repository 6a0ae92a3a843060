package documents

import (
	"myclaim/internal/extract"
	"myclaim/internal/prompt"
)

// Kind describes one uploadable document type.
type Kind struct {
	Name        string
	Route       string
	Instruction string
	Schema      *extract.Schema
	// damage photos go to the lighter vision model
	damage bool
}

var (
	Damage = Kind{
		Name:        "damage",
		Route:       "/analyze-damage",
		Instruction: prompt.Damage,
		Schema: extract.NewSchema("damage",
			extract.Field{Name: "damage_severity_score", Kind: extract.Float},
		),
		damage: true,
	}
	Identity = Kind{
		Name:        "identity",
		Route:       "/analyze-documents",
		Instruction: prompt.Identity,
		Schema: extract.NewSchema("identity",
			extract.Field{Name: "ic_number", Kind: extract.Int},
			extract.Field{Name: "license_type_missing_flag", Kind: extract.Bool},
		),
	}
	PoliceReport = Kind{
		Name:        "police_report",
		Route:       "/analyze-police-report",
		Instruction: prompt.PoliceReport,
		Schema: extract.NewSchema("police_report",
			extract.Field{Name: "claim_reported_to_police_flag", Kind: extract.Bool},
			extract.Field{Name: "time_to_report_days", Kind: extract.Int},
			extract.Field{Name: "at_fault_flag", Kind: extract.Bool},
			extract.Field{Name: "num_third_parties", Kind: extract.Int},
			extract.Field{Name: "num_witnesses", Kind: extract.Int},
		),
	}
	InsurancePolicy = Kind{
		Name:        "insurance_policy",
		Route:       "/analyze-insurance-policy",
		Instruction: prompt.InsurancePolicy,
		Schema: extract.NewSchema("insurance_policy",
			extract.Field{Name: "vehicle_make", Kind: extract.String},
			extract.Field{Name: "vehicle_age_years", Kind: extract.Int},
			extract.Field{Name: "policy_expired_flag", Kind: extract.Bool},
			extract.Field{Name: "months_as_customer", Kind: extract.Int},
			extract.Field{Name: "coverage_amount", Kind: extract.Int},
			extract.Field{Name: "deductible_amount", Kind: extract.Int},
		),
	}
	ClaimReport = Kind{
		Name:        "claim_report",
		Route:       "/analyze-claim-report",
		Instruction: prompt.ClaimReport,
		Schema: extract.NewSchema("claim_report",
			extract.Field{Name: "repair_amount", Kind: extract.Int},
			extract.Field{Name: "claim_description", Kind: extract.String},
			extract.Field{Name: "approval_flag", Kind: extract.Bool},
			extract.Field{Name: "customer_background", Kind: extract.String},
		),
	}
)

// Kinds lists every document type in route registration order.
func Kinds() []Kind {
	return []Kind{Damage, Identity, PoliceReport, InsurancePolicy, ClaimReport}
}

func Lookup(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}
