package profiles

import "github.com/JonMunkholm/leadsync/internal/core"

// ImageURLs is a one-field profile used to backfill image URLs on records
// that already exist. Run it update-only so it never creates records.
const ImageURLs = "image_urls"

func init() {
	core.Register(&core.Mapping{
		Name:  ImageURLs,
		Table: "priority_leads",
		Key:   "account_number",
		Fields: []core.FieldSpec{
			{Name: "account_number", Sources: []string{"Account Number", "Account_Number", "parcel_id"}},
			{Name: "image_url", Sources: []string{"Image URL", "photo_url"}},
		},
		ImageField: "image_url",
	})
}
