// Package patterns provides a centralized, compile-once registry of the
// scam pattern families used by the rule scorer. Each family carries its
// scoring parameters (per-match weight and cap) so that scoring stays
// data-driven: adding a family or a pattern never touches scorer code.
//
// Design principles:
// - COMPILE ONCE: All patterns compiled at package init, not per-message
// - DRY: Single source of truth for family weights and caps
// - CATEGORIZED: Patterns organized by family for targeted scans
package patterns

import (
	"regexp"
	"sync"
)

// Family identifies a scam pattern family.
type Family string

const (
	FamilyUrgency           Family = "urgency"
	FamilyThreat            Family = "threat"
	FamilyRequest           Family = "request"
	FamilySensitiveData     Family = "sensitive_data"
	FamilyImpersonation     Family = "impersonation"
	FamilyMoney             Family = "money"
	FamilyUPIScam           Family = "upi_scam"
	FamilyFinancialCoercion Family = "financial_coercion"
)

// scoringFamilies is the evaluation order for the rule scorer.
// Order is stable so explanations and tests are deterministic.
var scoringFamilies = []Family{
	FamilyUrgency,
	FamilyThreat,
	FamilyRequest,
	FamilySensitiveData,
	FamilyImpersonation,
	FamilyMoney,
	FamilyUPIScam,
	FamilyFinancialCoercion,
}

// Pattern holds a compiled regex with a name for logging.
type Pattern struct {
	Name  string
	Regex *regexp.Regexp
}

// FamilyConfig carries the scoring parameters for one family.
// A family contributes min(distinct_matches * PerMatchWeight, Cap).
type FamilyConfig struct {
	Family         Family
	PerMatchWeight float64
	Cap            float64
}

// Registry holds all compiled patterns, organized by family.
type Registry struct {
	mu       sync.RWMutex
	byFamily map[Family][]*Pattern
	configs  map[Family]FamilyConfig
}

// global singleton - initialized once at package load
var (
	globalRegistry *Registry
	initOnce       sync.Once
)

// Get returns the global pattern registry (singleton).
// Thread-safe and guaranteed to be initialized.
func Get() *Registry {
	initOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

func newRegistry() *Registry {
	r := &Registry{
		byFamily: make(map[Family][]*Pattern),
		configs:  make(map[Family]FamilyConfig),
	}

	r.registerUrgencyPatterns()
	r.registerThreatPatterns()
	r.registerRequestPatterns()
	r.registerSensitiveDataPatterns()
	r.registerImpersonationPatterns()
	r.registerMoneyPatterns()
	r.registerUPIScamPatterns()
	r.registerFinancialCoercionPatterns()

	return r
}

// configure sets the scoring parameters for a family (internal use only).
func (r *Registry) configure(f Family, perMatchWeight, cap float64) {
	r.configs[f] = FamilyConfig{Family: f, PerMatchWeight: perMatchWeight, Cap: cap}
}

// register adds a case-insensitive pattern to a family (internal use only).
// A pattern that fails to compile is a configuration-time fault and panics
// at package init, never at scoring time.
func (r *Registry) register(f Family, name, expr string) {
	compiled := regexp.MustCompile(`(?i)` + expr)
	r.byFamily[f] = append(r.byFamily[f], &Pattern{Name: name, Regex: compiled})
}

// Families returns the scoring families in evaluation order.
func (r *Registry) Families() []Family {
	return scoringFamilies
}

// Config returns the scoring parameters for a family.
func (r *Registry) Config(f Family) FamilyConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.configs[f]
}

// CountMatches returns the number of distinct patterns in the family that
// match the text. Repeated hits of the same pattern count once.
func (r *Registry) CountMatches(text string, f Family) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, p := range r.byFamily[f] {
		if p.Regex.MatchString(text) {
			count++
		}
	}
	return count
}

// MatchedTerms returns the matched substrings for every pattern in the
// family, deduplicated. These are the keyword evidence for explanations.
func (r *Registry) MatchedTerms(text string, f Family) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var terms []string
	for _, p := range r.byFamily[f] {
		for _, m := range p.Regex.FindAllString(text, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			terms = append(terms, m)
		}
	}
	return terms
}

// FamilyScore converts the family's distinct match count into its bounded
// score contribution: min(count * per_match_weight, cap).
func (r *Registry) FamilyScore(text string, f Family) float64 {
	count := r.CountMatches(text, f)
	if count == 0 {
		return 0
	}
	cfg := r.Config(f)
	score := float64(count) * cfg.PerMatchWeight
	if score > cfg.Cap {
		score = cfg.Cap
	}
	return score
}

// TotalPatterns returns the total count of registered patterns.
func (r *Registry) TotalPatterns() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, ps := range r.byFamily {
		total += len(ps)
	}
	return total
}

// FamilyCount returns the number of patterns in a family.
func (r *Registry) FamilyCount(f Family) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byFamily[f])
}
