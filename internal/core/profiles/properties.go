package profiles

import "github.com/JonMunkholm/leadsync/internal/core"

// Properties is the profile for the master property analysis table.
const Properties = "properties"

// propertiesProtected are workflow and audit fields owned by the web app.
// An import never overwrites them on an existing record.
var propertiesProtected = []string{
	"approval_status",
	"approved_by",
	"approved_by_name",
	"approved_at",
	"rejection_reason",
	"rejection_notes",
	"created_by",
	"created_by_name",
	"updated_by",
	"updated_by_name",
}

func init() {
	registerProperties()
}

func registerProperties() {
	core.Register(&core.Mapping{
		Name:  Properties,
		Table: "properties",
		Key:   "account_number",
		Fields: []core.FieldSpec{
			{Name: "account_number", Sources: []string{"Account_Number", "Account Number", "parcel_id"}},
			{Name: "property_address", Sources: []string{"Property_Address", "Property Address"}},
			{Name: "owner_name", Sources: []string{"Owner_Name", "Owner"}},
			{Name: "mailing_address", Sources: []string{"Mailing_Address", "Mailing Address"}},
			{Name: "property_use", Sources: []string{"DOR_UC", "Property Type"}},
			{Name: "total_market_value", Sources: []string{"Total_Market_Value", "Just Value"}, Type: core.FieldDecimal},
			{Name: "total_assessed_value", Sources: []string{"Total_Assessed_Value"}, Type: core.FieldDecimal},
			{Name: "exemptions", Sources: []string{"Exemptions"}},
			{Name: "taxable_value", Sources: []string{"Taxable_Value", "Taxable Value"}, Type: core.FieldDecimal},
			{Name: "years_delinquent", Sources: []string{"Years_Delinquent", "Years Delinquent"}, Type: core.FieldInteger},
			{Name: "total_amount_due", Sources: []string{"Total_Amount_Due", "Total Tax Due"}, Type: core.FieldDecimal},
			{Name: "face_amount", Sources: []string{"Face_Amount"}, Type: core.FieldDecimal},
			{Name: "certificate_count", Sources: []string{"Certificate_Count"}, Type: core.FieldInteger},
			{Name: "tax_score", Sources: []string{"Tax_Score"}, Type: core.FieldDecimal},
			{Name: "visual_score", Sources: []string{"Visual_Score"}, Type: core.FieldDecimal},
			{Name: "final_combined_score", Sources: []string{"Final_Combined_Score", "Lead Score"}, Type: core.FieldDecimal},
			{Name: "tier", Sources: []string{"Tier", "Priority"}, Normalizer: NormalizeTier},
			{Name: "lead_status", Default: "new"},
			{Name: "approval_status"},
			{Name: "photo_url"},
		},
		Protected:      propertiesProtected,
		InsertDefaults: core.Record{"approval_status": "pending"},
		ImageField:     "photo_url",
	})
}
