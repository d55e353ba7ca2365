// Package extract pulls actionable scam intelligence out of conversation
// text: bank account numbers (masked), UPI handles, Indian phone numbers,
// phishing links, and a fixed vocabulary of suspicious keywords.
package extract

// Intelligence is the typed artifact set accumulated over a session.
// Field names mirror the callback payload wire format.
type Intelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	PhishingLinks      []string `json:"phishingLinks"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// Merge returns the union of two intelligence sets. Duplicates collapse
// and first-seen order is preserved, so merging is idempotent.
func (i Intelligence) Merge(other Intelligence) Intelligence {
	return Intelligence{
		BankAccounts:       unionStrings(i.BankAccounts, other.BankAccounts),
		UPIIDs:             unionStrings(i.UPIIDs, other.UPIIDs),
		PhoneNumbers:       unionStrings(i.PhoneNumbers, other.PhoneNumbers),
		PhishingLinks:      unionStrings(i.PhishingLinks, other.PhishingLinks),
		SuspiciousKeywords: unionStrings(i.SuspiciousKeywords, other.SuspiciousKeywords),
	}
}

// Clone returns an independent copy with no shared backing arrays.
func (i Intelligence) Clone() Intelligence {
	return Intelligence{
		BankAccounts:       append([]string(nil), i.BankAccounts...),
		UPIIDs:             append([]string(nil), i.UPIIDs...),
		PhoneNumbers:       append([]string(nil), i.PhoneNumbers...),
		PhishingLinks:      append([]string(nil), i.PhishingLinks...),
		SuspiciousKeywords: append([]string(nil), i.SuspiciousKeywords...),
	}
}

// IsEmpty reports whether no artifacts of any kind were captured.
func (i Intelligence) IsEmpty() bool {
	return len(i.BankAccounts) == 0 &&
		len(i.UPIIDs) == 0 &&
		len(i.PhoneNumbers) == 0 &&
		len(i.PhishingLinks) == 0 &&
		len(i.SuspiciousKeywords) == 0
}

// ArtifactCount returns the total number of hard artifacts (keywords
// excluded, they are evidence rather than leads).
func (i Intelligence) ArtifactCount() int {
	return len(i.BankAccounts) + len(i.UPIIDs) + len(i.PhoneNumbers) + len(i.PhishingLinks)
}

func unionStrings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range b {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
