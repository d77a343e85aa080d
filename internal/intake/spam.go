package intake

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Spam rule names, reported in logs and metrics.
const (
	RuleHoneypot = "honeypot"
	RuleTooFast  = "too_fast"
	RuleLinks    = "excessive_links"
	RuleKeyword  = "keyword"
	RuleAllCaps  = "all_caps"
	RuleNonASCII = "non_ascii"
)

// minSubmissionTime is the floor below which a form was filled faster than a
// human could type.
const minSubmissionTime = 3000 * time.Millisecond

// honeypotFields are never rendered visibly; any value in them came from a bot.
var honeypotFields = []string{"website", "company_url", "fax", "address2"}

var spamKeywords = []string{
	"crypto", "bitcoin", "ethereum", "nft",
	"casino", "poker", "gambling", "bet ",
	"viagra", "cialis", "pharmacy",
	"seo services", "backlinks", "web traffic",
	"nigerian prince", "lottery winner", "congratulations you won",
	"click here now", "act now", "limited time",
	"work from home", "make money fast", "earn $$",
}

// ClassifySpam runs the bot heuristics in order and returns the name of the
// first rule that matched, or "" for a clean submission. The chain runs after
// alias extraction and before required-field validation, so a honeypot hit is
// discarded even when the form is otherwise incomplete.
func ClassifySpam(f Fields, lead Lead, now time.Time) string {
	for _, field := range honeypotFields {
		if f.Pick(field) != "" {
			return RuleHoneypot
		}
	}

	if ts := f.Pick("_ts"); ts != "" {
		if renderedAt, err := strconv.ParseInt(ts, 10, 64); err == nil {
			// A timestamp from the future counts as under the floor: a
			// client clock that far off is indistinguishable from a replay.
			if now.UnixMilli()-renderedAt < minSubmissionTime.Milliseconds() {
				return RuleTooFast
			}
		}
	}

	combined := lead.combinedText()

	if countLinks(combined) > 2 {
		return RuleLinks
	}

	for _, keyword := range spamKeywords {
		if strings.Contains(combined, keyword) {
			return RuleKeyword
		}
	}

	if utf8.RuneCountInString(lead.Message) > 20 {
		upper, letters := 0, 0
		for _, r := range lead.Message {
			switch {
			case r >= 'A' && r <= 'Z':
				upper++
				letters++
			case r >= 'a' && r <= 'z':
				letters++
			}
		}
		if letters > 0 && float64(upper)/float64(letters) > 0.7 {
			return RuleAllCaps
		}
	}

	total, nonASCII := 0, 0
	for _, r := range combined {
		total++
		if r > unicode.MaxASCII {
			nonASCII++
		}
	}
	if total > 0 && float64(nonASCII)/float64(total) > 0.3 {
		return RuleNonASCII
	}

	return ""
}

// countLinks counts URL-like substrings; combined is already lowercased.
func countLinks(combined string) int {
	return strings.Count(combined, "http://") +
		strings.Count(combined, "https://") +
		strings.Count(combined, "www.")
}
