package site

// ContactVariant selects which contact fields a site's form collects.
type ContactVariant string

const (
	// VariantAddress collects a street address and zip code.
	VariantAddress ContactVariant = "address"
	// VariantEmail collects an email address instead.
	VariantEmail ContactVariant = "email"
)

// Profile holds the business identity for one deployed landing page. Each
// site used to hard-code these into its own copy of the lead route; they are
// configuration now so one pipeline serves every business.
type Profile struct {
	Key          string
	BrandName    string
	BrandAddress string
	PrimaryColor string
	AccentColor  string
	FromEmail    string
	TimeZone     string
	Variant      ContactVariant

	// StrictFormats enables the name/phone/zip/message format rules.
	// The email-variant site historically validated presence only; the
	// difference is preserved rather than harmonized.
	StrictFormats bool
}

var profiles = []Profile{
	{
		Key:           "treepro",
		BrandName:     "Jimenez Tree Pro",
		BrandAddress:  "Pasadena, TX",
		PrimaryColor:  "#166534",
		AccentColor:   "#ea580c",
		FromEmail:     "Jimenez Tree Pro <leads@quicklaunchweb.us>",
		TimeZone:      "America/Chicago",
		Variant:       VariantAddress,
		StrictFormats: true,
	},
	{
		Key:           "lonestarfence",
		BrandName:     "Lone Star Fence Co",
		BrandAddress:  "Baytown, TX",
		PrimaryColor:  "#1e3a8a",
		AccentColor:   "#f59e0b",
		FromEmail:     "Lone Star Fence Co <leads@quicklaunchweb.us>",
		TimeZone:      "America/Chicago",
		Variant:       VariantAddress,
		StrictFormats: true,
	},
	{
		Key:           "reyeshomerepair",
		BrandName:     "Reyes Home Repair",
		BrandAddress:  "Houston, TX",
		PrimaryColor:  "#7c2d12",
		AccentColor:   "#0ea5e9",
		FromEmail:     "Reyes Home Repair <leads@quicklaunchweb.us>",
		TimeZone:      "America/Chicago",
		Variant:       VariantEmail,
		StrictFormats: false,
	},
}

// Lookup returns the profile for a site key.
func Lookup(key string) (Profile, bool) {
	for _, p := range profiles {
		if p.Key == key {
			return p, true
		}
	}
	return Profile{}, false
}

// Profiles returns all registered site profiles in declaration order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}
