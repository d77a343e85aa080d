package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/quicklaunchweb/leadrelay/internal/intake"
	"github.com/quicklaunchweb/leadrelay/internal/site"
)

// Payload is the fully rendered notification for one lead. It is built fresh
// per request and never mutated after construction.
type Payload struct {
	From    string
	To      string
	Bcc     []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// timestampLayout renders a US-style timestamp with the zone abbreviation,
// e.g. "Sep 01, 2026, 3:04 PM CDT".
const timestampLayout = "Jan 02, 2006, 3:04 PM MST"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// BuildPayload renders the plain-text and HTML notification for a validated
// lead. It is a pure function of the lead, the site profile and the clock;
// addressing beyond the site's default sender is filled in by the dispatcher.
func BuildPayload(lead intake.Lead, p site.Profile, now time.Time) Payload {
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	timestamp := now.In(loc).Format(timestampLayout)

	safeName := lead.Name
	if safeName == "" {
		safeName = "Website Form"
	}
	safeService := lead.Service
	if safeService == "" {
		safeService = "Website Form"
	}

	pageDisplay := lead.Page
	if pageDisplay != "" && isDevURL(lead.Page) {
		pageDisplay += " (dev link)"
	}

	return Payload{
		From:    p.FromEmail,
		Subject: fmt.Sprintf("New Lead: %s | %s", safeService, safeName),
		Text:    buildText(lead, timestamp, pageDisplay),
		HTML:    buildHTML(lead, p, timestamp, safeName, safeService, pageDisplay),
	}
}

// isDevURL reports whether a page URL points at a local development host.
func isDevURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.Contains(lower, "localhost") ||
		strings.Contains(lower, "127.0.0.1") ||
		strings.Contains(lower, "0.0.0.0")
}

// dialLink derives the tel: target from the submitted phone. Used only for
// the clickable call link, never for display.
func dialLink(phone string) string {
	if phone == "" {
		return ""
	}
	digits := digitsOnly(phone)
	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		return "+" + digits
	}
	if digits == "" {
		return ""
	}
	if len(digits) == 10 {
		return "+1" + digits
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		return "+" + digits
	}
	return digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// buildText renders the ordered "Label: value" lines, omitting absent
// optional fields, ending with the message block.
func buildText(lead intake.Lead, timestamp, pageDisplay string) string {
	lines := []string{"Timestamp: " + timestamp}
	appendLine := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	appendLine("Name", lead.Name)
	appendLine("Phone", lead.Phone)
	appendLine("Email", lead.Email)
	appendLine("Address", lead.Address)
	appendLine("Zip Code", lead.ZipCode)
	appendLine("Company", lead.Company)
	appendLine("Service", lead.Service)
	appendLine("Page", pageDisplay)
	appendLine("Site", lead.Site)

	message := lead.Message
	if message == "" {
		message = "(none)"
	}
	lines = append(lines, "Message:\n"+message)

	return strings.Join(lines, "\n")
}

const detailRowTemplate = `<tr><td style="padding:10px 0;color:#64748b;width:120px;">%s</td><td style="padding:10px 0;color:#0f172a;font-weight:700;">%s</td></tr>`

func detailRow(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(detailRowTemplate, label, escapeHTML(value))
}

func linkRow(label, href, display, accent string) string {
	if display == "" {
		return ""
	}
	return fmt.Sprintf(`<tr><td style="padding:10px 0;color:#64748b;width:120px;">%s</td><td style="padding:10px 0;"><a href="%s" style="color:%s;text-decoration:none;">%s</a></td></tr>`,
		label, escapeHTML(href), accent, escapeHTML(display))
}

// buildHTML renders the branded, self-contained email document. Every
// user-supplied value passes through escapeHTML before interpolation.
func buildHTML(lead intake.Lead, p site.Profile, timestamp, safeName, safeService, pageDisplay string) string {
	phoneLink := dialLink(lead.Phone)
	if phoneLink == "" {
		phoneLink = lead.Phone
	}

	var rows strings.Builder
	rows.WriteString(detailRow("Name", safeName))
	rows.WriteString(fmt.Sprintf(`<tr><td style="padding:10px 0;color:#64748b;width:120px;">Phone</td><td style="padding:10px 0;"><a href="tel:%s" style="color:#0f172a;text-decoration:none;font-weight:700;">%s</a></td></tr>`,
		escapeHTML(phoneLink), escapeHTML(lead.Phone)))
	rows.WriteString(detailRow("Email", lead.Email))
	rows.WriteString(detailRow("Address", lead.Address))
	rows.WriteString(detailRow("Zip Code", lead.ZipCode))
	rows.WriteString(detailRow("Service", safeService))
	rows.WriteString(linkRow("Page URL", lead.Page, pageDisplay, p.AccentColor))
	rows.WriteString(linkRow("Site", lead.Site, lead.Site, p.AccentColor))
	rows.WriteString(detailRow("Company", lead.Company))

	messageCell := `<div style="font-style:italic;color:#64748b;">No message provided.</div>`
	if lead.Message != "" {
		escaped := strings.ReplaceAll(escapeHTML(lead.Message), "\n", "<br />")
		messageCell = fmt.Sprintf(`<div style="font-weight:500;">%s</div>`, escaped)
	}
	rows.WriteString(fmt.Sprintf(`<tr><td style="padding:10px 0;color:#64748b;vertical-align:top;">Message</td><td style="padding:10px 0;color:#0f172a;">%s</td></tr>`, messageCell))

	pageLink := ""
	if pageDisplay != "" {
		pageLink = fmt.Sprintf(`<tr><td style="padding:0;"><a href="%s" style="font-size:12px;color:%s;text-decoration:none;">View Page</a></td></tr>`,
			escapeHTML(lead.Page), p.AccentColor)
	}

	return fmt.Sprintf(`
<div style="background-color:#e2e8f0;margin:0;padding:24px 12px;font-family:'Barlow','Segoe UI',Roboto,Helvetica,Arial,sans-serif;color:#0f172a;">
  <span style="display:none!important;visibility:hidden;opacity:0;color:transparent;height:0;width:0;overflow:hidden;">
    New quote request from %[1]s. Respond quickly.
  </span>
  <table role="presentation" cellpadding="0" cellspacing="0" width="100%%" style="max-width:640px;margin:0 auto;background:#ffffff;border:1px solid #cbd5e1;border-radius:16px;box-shadow:0 14px 36px rgba(2,6,23,0.18);overflow:hidden;">
    <tr>
      <td style="background:%[2]s;color:#ffffff;padding:18px 20px;border-bottom:4px solid %[3]s;">
        <table role="presentation" cellpadding="0" cellspacing="0" width="100%%">
          <tr>
            <td style="font-size:18px;font-weight:800;letter-spacing:0.4px;text-transform:uppercase;">%[4]s</td>
            <td align="right">
              <span style="display:inline-block;background:%[3]s;color:#ffffff;font-weight:800;font-size:11px;padding:7px 10px;border-radius:999px;letter-spacing:1.2px;">NEW LEAD</span>
            </td>
          </tr>
        </table>
      </td>
    </tr>
    <tr>
      <td style="padding:24px 20px 14px;">
        <div style="font-size:25px;font-weight:800;line-height:1.2;margin:0 0 6px;color:#0f172a;">%[1]s</div>
        <div style="font-size:15px;color:%[2]s;font-weight:700;margin:0 0 5px;">%[5]s</div>
        <div style="font-size:12px;color:#64748b;">%[6]s</div>
      </td>
    </tr>
    <tr>
      <td style="padding:0 20px 20px;">
        <table role="presentation" cellpadding="0" cellspacing="0" width="100%%">
          <tr>
            <td style="padding:0 0 10px;">
              <a href="tel:%[7]s" style="display:block;background:%[3]s;color:#ffffff;text-decoration:none;font-weight:800;font-size:14px;text-align:center;padding:14px 18px;border-radius:10px;">
                Hold to Call Lead
              </a>
            </td>
          </tr>
          %[8]s
        </table>
      </td>
    </tr>
    <tr>
      <td style="padding:0 20px 20px;">
        <table role="presentation" cellpadding="0" cellspacing="0" width="100%%" style="border:1px solid #dbe5f3;border-radius:12px;overflow:hidden;">
          <tr>
            <td style="background:#eff6ff;padding:14px 16px;font-weight:800;border-bottom:1px solid #dbe5f3;color:%[2]s;">Lead Details</td>
          </tr>
          <tr>
            <td style="padding:0 16px;">
              <table role="presentation" cellpadding="0" cellspacing="0" width="100%%" style="font-size:14px;">
                %[9]s
              </table>
            </td>
          </tr>
        </table>
      </td>
    </tr>
    <tr>
      <td style="padding:0 20px 22px;">
        <div style="border-left:4px solid %[3]s;padding:12px;background:#f8fafc;border-radius:8px;font-size:12px;color:#475569;line-height:1.5;">
          This lead came from the %[4]s website form.
          <span style="display:block;margin-top:6px;font-weight:700;color:%[2]s;">%[10]s</span>
        </div>
      </td>
    </tr>
  </table>
</div>
`,
		escapeHTML(safeName),
		p.PrimaryColor,
		p.AccentColor,
		escapeHTML(p.BrandName),
		escapeHTML(safeService),
		escapeHTML(timestamp),
		escapeHTML(phoneLink),
		pageLink,
		rows.String(),
		escapeHTML(p.BrandAddress),
	)
}
