package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Extractor matches and validates scam artifacts. All patterns compile
// once at construction.
type Extractor struct {
	bankPatterns  []*regexp.Regexp
	upiPatterns   []*regexp.Regexp
	phonePatterns []*regexp.Regexp
	linkPatterns  []*regexp.Regexp
}

// Indian bank account numbers run 9-18 digits; cards and some accounts
// appear in 4-4-4-4 groups.
var bankAccountExprs = []string{
	`\b\d{9,18}\b`,
	`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`,
}

var upiExprs = []string{
	// Full dotted domain so plain email addresses can be recognized
	// and rejected downstream.
	`\b[\w.-]+@[\w]+(?:\.[\w]+)*\b`,
	`\b[\w.-]+@(?:upi|ybl|paytm|okaxis|okhdfcbank|oksbi|apl|ibl)\b`,
}

var phoneExprs = []string{
	`\+91[-\s]?\d{10}\b`,
	`\b91[-\s]?\d{10}\b`,
	`\b0\d{10}\b`,
	`\b[6-9]\d{9}\b`,
}

var linkExprs = []string{
	`https?://[^\s<>"']+`,
	`www\.[^\s<>"']+`,
	`\b[\w-]+\.(?:com|in|org|net|co\.in|xyz|tk|ml|ga|cf)/[^\s]*`,
	`bit\.ly/[^\s]+`,
	`tinyurl\.com/[^\s]+`,
	`t\.co/[^\s]+`,
}

// suspiciousKeywords is the fixed vocabulary extracted by literal
// substring membership.
var suspiciousKeywords = []string{
	"urgent", "immediately", "blocked", "suspended", "verify",
	"confirm", "update", "otp", "pin", "password", "cvv",
	"bank", "account", "upi", "transfer", "payment", "kyc",
	"aadhaar", "pan", "prize", "lottery", "winner", "reward",
	"cashback", "refund", "claim", "expire", "deadline",
	"legal action", "police", "arrest", "court", "penalty",
}

// upiSuffixes are handle providers that confirm an @-token is a UPI ID.
var upiSuffixes = []string{
	"upi", "ybl", "paytm", "okaxis", "okhdfcbank",
	"oksbi", "apl", "ibl", "icici", "sbi", "hdfc",
}

// mailDomains are never UPI handles.
var mailDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
	"outlook.com": true,
	"email.com":   true,
}

// safeDomains are excluded from phishing-link extraction.
var safeDomains = []string{
	"google.com", "facebook.com", "twitter.com",
	"instagram.com", "youtube.com", "linkedin.com",
}

var separatorRe = regexp.MustCompile(`[-\s+]`)

// NewExtractor compiles all artifact patterns.
func NewExtractor() *Extractor {
	return &Extractor{
		bankPatterns:  compile(bankAccountExprs),
		upiPatterns:   compile(upiExprs),
		phonePatterns: compile(phoneExprs),
		linkPatterns:  compile(linkExprs),
	}
}

func compile(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

func findAll(text string, patterns []*regexp.Regexp) []string {
	seen := make(map[string]struct{})
	var matches []string
	for _, p := range patterns {
		for _, m := range p.FindAllString(text, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			matches = append(matches, m)
		}
	}
	return matches
}

// ExtractFromText extracts and validates all artifact types from one
// message.
func (e *Extractor) ExtractFromText(text string) Intelligence {
	return Intelligence{
		BankAccounts:       e.filterBankAccounts(findAll(text, e.bankPatterns)),
		UPIIDs:             e.filterUPIIDs(findAll(text, e.upiPatterns)),
		PhoneNumbers:       e.filterPhoneNumbers(findAll(text, e.phonePatterns)),
		PhishingLinks:      e.filterLinks(findAll(text, e.linkPatterns)),
		SuspiciousKeywords: e.extractKeywords(text),
	}
}

// ExtractFromTexts folds extraction over many messages (typically the
// counterparty's side of a session).
func (e *Extractor) ExtractFromTexts(texts []string) Intelligence {
	var combined Intelligence
	for _, text := range texts {
		combined = combined.Merge(e.ExtractFromText(text))
	}
	return combined
}

// filterBankAccounts validates digit runs and masks them for privacy:
// only the last four digits survive as XXXX-XXXX-1234.
func (e *Extractor) filterBankAccounts(matches []string) []string {
	seen := make(map[string]struct{})
	var valid []string
	for _, m := range matches {
		clean := separatorRe.ReplaceAllString(m, "")
		if len(clean) < 9 || len(clean) > 18 || !isDigits(clean) {
			continue
		}
		masked := "XXXX-XXXX-" + clean[len(clean)-4:]
		if _, ok := seen[masked]; ok {
			continue
		}
		seen[masked] = struct{}{}
		valid = append(valid, masked)
	}
	return valid
}

// filterUPIIDs keeps @-tokens whose suffix names a known UPI provider or
// is short enough to be a handle, and drops plain email addresses.
func (e *Extractor) filterUPIIDs(matches []string) []string {
	seen := make(map[string]struct{})
	var valid []string
	for _, m := range matches {
		parts := strings.Split(m, "@")
		if len(parts) != 2 {
			continue
		}
		suffix := strings.ToLower(parts[1])
		if mailDomains[suffix] {
			continue
		}
		known := false
		for _, s := range upiSuffixes {
			if strings.Contains(suffix, s) {
				known = true
				break
			}
		}
		if !known && len(suffix) > 10 {
			continue
		}
		handle := strings.ToLower(m)
		if _, ok := seen[handle]; ok {
			continue
		}
		seen[handle] = struct{}{}
		valid = append(valid, handle)
	}
	return valid
}

// filterPhoneNumbers normalizes to +91XXXXXXXXXX and keeps only valid
// Indian mobiles (10 digits starting 6-9).
func (e *Extractor) filterPhoneNumbers(matches []string) []string {
	seen := make(map[string]struct{})
	var valid []string
	for _, m := range matches {
		clean := separatorRe.ReplaceAllString(m, "")
		if strings.HasPrefix(clean, "91") && len(clean) > 10 {
			clean = clean[2:]
		} else if strings.HasPrefix(clean, "0") && len(clean) > 10 {
			clean = clean[1:]
		}
		if len(clean) != 10 || clean[0] < '6' || clean[0] > '9' || !isDigits(clean) {
			continue
		}
		formatted := "+91" + clean
		if _, ok := seen[formatted]; ok {
			continue
		}
		seen[formatted] = struct{}{}
		valid = append(valid, formatted)
	}
	return valid
}

// filterLinks drops well-known safe domains and normalizes scheme-less
// URLs to http://.
func (e *Extractor) filterLinks(matches []string) []string {
	seen := make(map[string]struct{})
	var valid []string
	for _, m := range matches {
		lower := strings.ToLower(m)
		safe := false
		for _, domain := range safeDomains {
			if strings.Contains(lower, domain) {
				safe = true
				break
			}
		}
		if safe {
			continue
		}
		if !strings.HasPrefix(m, "http") {
			m = "http://" + m
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		valid = append(valid, m)
	}
	return valid
}

// extractKeywords checks the fixed vocabulary by substring membership.
func (e *Extractor) extractKeywords(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// GenerateAgentNotes summarizes the scam attempt for the final report:
// the scam type, tactics inferred from the keyword evidence, artifact
// counts, and the conversation length.
func GenerateAgentNotes(intel Intelligence, scamType string, totalMessages int) string {
	parts := []string{fmt.Sprintf("Scam Type: %s", scamType)}

	keywords := make(map[string]bool, len(intel.SuspiciousKeywords))
	for _, kw := range intel.SuspiciousKeywords {
		keywords[kw] = true
	}
	anyOf := func(words ...string) bool {
		for _, w := range words {
			if keywords[w] {
				return true
			}
		}
		return false
	}

	var tactics []string
	if anyOf("urgent", "immediately", "asap", "now") {
		tactics = append(tactics, "urgency tactics")
	}
	if anyOf("blocked", "suspended", "legal action", "arrest") {
		tactics = append(tactics, "fear/threat tactics")
	}
	if anyOf("prize", "lottery", "winner", "reward", "cashback") {
		tactics = append(tactics, "reward bait")
	}
	if anyOf("bank", "rbi", "government", "official") {
		tactics = append(tactics, "authority impersonation")
	}
	if anyOf("otp", "pin", "password", "cvv") {
		tactics = append(tactics, "credential harvesting")
	}
	if anyOf("upi", "transfer", "payment") {
		tactics = append(tactics, "payment redirection")
	}
	if len(tactics) > 0 {
		parts = append(parts, fmt.Sprintf("Tactics used: %s", strings.Join(tactics, ", ")))
	}

	if n := len(intel.UPIIDs); n > 0 {
		parts = append(parts, fmt.Sprintf("UPI IDs shared: %d", n))
	}
	if n := len(intel.PhoneNumbers); n > 0 {
		parts = append(parts, fmt.Sprintf("Phone numbers: %d", n))
	}
	if n := len(intel.PhishingLinks); n > 0 {
		parts = append(parts, fmt.Sprintf("Suspicious links: %d", n))
	}
	if n := len(intel.BankAccounts); n > 0 {
		parts = append(parts, fmt.Sprintf("Bank accounts mentioned: %d", n))
	}

	parts = append(parts, fmt.Sprintf("Total messages exchanged: %d", totalMessages))
	return strings.Join(parts, ". ")
}
