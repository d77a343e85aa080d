package intake

import "strings"

// Fields is the flat field map decoded from one submission. Values are kept
// as decoded; normalization happens on access so non-string JSON values
// collapse to empty strings.
type Fields map[string]any

// Pick returns the first non-empty normalized value among keys, tried in
// declaration order. The alias order is a contract: a form that submits both
// "name" and "fullName" resolves to "name".
func (f Fields) Pick(keys ...string) string {
	for _, key := range keys {
		if v := normalizeValue(f[key]); v != "" {
			return v
		}
	}
	return ""
}

// normalizeValue collapses non-strings to "", converts Windows line endings
// and trims surrounding whitespace.
func normalizeValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

// Alias lists for each canonical lead field, in precedence order.
var (
	nameAliases    = []string{"name", "fullName", "fullname"}
	phoneAliases   = []string{"phone", "phoneNumber", "phone_number", "tel"}
	addressAliases = []string{"address", "streetAddress"}
	emailAliases   = []string{"email", "emailAddress", "email_address"}
	zipAliases     = []string{"zipCode", "zip_code", "zip"}
	messageAliases = []string{"message", "details", "notes"}
	companyAliases = []string{"company", "companyName", "company_name"}
	serviceAliases = []string{"service", "serviceNeeded", "service_needed"}
	pageAliases    = []string{"page", "pageUrl", "page_url"}
	siteAliases    = []string{"site", "siteUrl", "site_url"}
)

// Lead is the canonical submission extracted from a field map. Address/ZipCode
// or Email may be empty depending on the site's contact variant.
type Lead struct {
	Name    string
	Phone   string
	Address string
	Email   string
	ZipCode string
	Message string
	Company string
	Service string
	Page    string
	Site    string
}

// ExtractLead resolves every canonical field from its aliases.
func ExtractLead(f Fields) Lead {
	return Lead{
		Name:    f.Pick(nameAliases...),
		Phone:   f.Pick(phoneAliases...),
		Address: f.Pick(addressAliases...),
		Email:   f.Pick(emailAliases...),
		ZipCode: f.Pick(zipAliases...),
		Message: f.Pick(messageAliases...),
		Company: f.Pick(companyAliases...),
		Service: f.Pick(serviceAliases...),
		Page:    f.Pick(pageAliases...),
		Site:    f.Pick(siteAliases...),
	}
}

// combinedText is the haystack the content filters scan: name, address, zip
// and message joined with spaces, lowercased.
func (l Lead) combinedText() string {
	return strings.ToLower(l.Name + " " + l.Address + " " + l.ZipCode + " " + l.Message)
}
