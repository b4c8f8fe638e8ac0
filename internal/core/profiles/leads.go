package profiles

import "github.com/JonMunkholm/leadsync/internal/core"

// PriorityLeads is the profile for the ranked lead list.
const PriorityLeads = "priority_leads"

func init() {
	registerPriorityLeads()
}

func registerPriorityLeads() {
	core.Register(&core.Mapping{
		Name:  PriorityLeads,
		Table: "priority_leads",
		Key:   "account_number",
		Fields: []core.FieldSpec{
			{Name: "account_number", Sources: []string{"Account Number", "Account_Number", "parcel_id"}},
			{Name: "priority_tier", Sources: []string{"Priority", "Tier"}, Normalizer: NormalizeTier},
			{Name: "owner_name", Sources: []string{"Owner", "Owner Name", "Owner_Name"}},
			{Name: "mailing_address", Sources: []string{"Mailing Address", "Mailing_Address"}},
			{Name: "mailing_city", Sources: []string{"Mailing City"}},
			{Name: "mailing_state", Sources: []string{"Mailing State"}, Normalizer: NormalizeUsState},
			{Name: "mailing_zip", Sources: []string{"Mailing Zip"}, Normalizer: NormalizeZip},
			{Name: "property_address", Sources: []string{"Property Address", "Property_Address"}},
			{Name: "lead_score", Sources: []string{"Lead Score", "Final_Combined_Score"}, Type: core.FieldDecimal},
			{Name: "condition_score", Sources: []string{"Condition_Score", "Visual_Score"}, Type: core.FieldDecimal},
			{Name: "condition_category", Sources: []string{"Condition_Category"}},
			{Name: "visual_summary", Sources: []string{"Visual_Summary"}},
			{Name: "property_type", Sources: []string{"Property Type", "DOR_UC"}},
			{Name: "beds", Sources: []string{"Beds", "Bedrooms"}, Type: core.FieldInteger},
			{Name: "baths", Sources: []string{"Baths", "Bathrooms"}, Type: core.FieldDecimal},
			{Name: "year_built", Sources: []string{"Year Built"}, Type: core.FieldInteger},
			{Name: "sqft", Sources: []string{"SqFt"}, Type: core.FieldInteger},
			{Name: "lot_size", Sources: []string{"Lot Size"}, Type: core.FieldDecimal},
			{Name: "just_value", Sources: []string{"Just Value", "Total_Market_Value"}, Type: core.FieldDecimal},
			{Name: "taxable_value", Sources: []string{"Taxable Value", "Taxable_Value"}, Type: core.FieldDecimal},
			{Name: "exemptions", Sources: []string{"Exemptions"}},
			{Name: "total_tax_due", Sources: []string{"Total Tax Due", "Total_Amount_Due"}, Type: core.FieldDecimal},
			{Name: "years_delinquent", Sources: []string{"Years Delinquent", "Years_Delinquent"}, Type: core.FieldInteger},
			{Name: "is_estate", Sources: []string{"Is Estate"}, Type: core.FieldBool},
			{Name: "is_out_of_state", Sources: []string{"Is Out of State"}, Type: core.FieldBool},
			{Name: "equity_estimate", Sources: []string{"Equity Estimate"}, Type: core.FieldDecimal},
			{Name: "estimated_repair_cost_low", Sources: []string{"Estimated_Repair_Cost_Low"}, Type: core.FieldDecimal},
			{Name: "estimated_repair_cost_high", Sources: []string{"Estimated_Repair_Cost_High"}, Type: core.FieldDecimal},
			{Name: "appears_vacant", Sources: []string{"Appears_Vacant"}, Type: core.FieldBool},
			{Name: "is_vacant_land", Sources: []string{"Is_Vacant_Land"}, Type: core.FieldBool},
			{Name: "lawn_condition", Sources: []string{"Lawn_Condition"}},
			{Name: "exterior_condition", Sources: []string{"Exterior_Condition"}},
			{Name: "roof_condition", Sources: []string{"Roof_Condition"}},
			{Name: "visible_issues", Sources: []string{"Visible_Issues"}},
			{Name: "distress_indicators", Sources: []string{"Distress_Indicators"}},
			{Name: "contact_status", Default: "not_contacted"},
			{Name: "image_url", Sources: []string{"Image URL", "photo_url"}},
		},
		ImageField: "image_url",
	})
}
