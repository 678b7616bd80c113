package schema

import "sort"

// LabelMapping maps fine-grained labels onto a coarser label set.
//
// Fine labels listed in PassThrough are allowed through unmapped: they keep
// their value so a later filter can exclude them. Any other label absent
// from Coarse is an error for the consolidation stage.
type LabelMapping struct {
	Coarse      map[string]string `json:"mapping" yaml:"mapping"`
	PassThrough []string          `json:"pass_through" yaml:"pass_through"`
}

// Lookup returns the coarse value for fine. ok is false when fine is neither
// mapped nor designated pass-through.
func (m LabelMapping) Lookup(fine string) (coarse string, ok bool) {
	if c, found := m.Coarse[fine]; found {
		return c, true
	}
	for _, p := range m.PassThrough {
		if p == fine {
			return fine, true
		}
	}
	return "", false
}

// CoarseLabels returns the distinct coarse values in sorted order.
func (m LabelMapping) CoarseLabels() []string {
	seen := map[string]struct{}{}
	for _, c := range m.Coarse {
		seen[c] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// AttackMapping returns the CSE-CIC-IDS2018 attack family mapping.
// "Label" maps to Benign so stray header rows never fail consolidation.
func AttackMapping() LabelMapping {
	coarse := map[string]string{
		"SSH-Bruteforce": "Brute-force",
		"FTP-BruteForce": "Brute-force",

		"Brute Force -XSS": "Web attack",
		"Brute Force -Web": "Web attack",
		"SQL Injection":    "Web attack",

		"DoS attacks-Hulk":         "DoS attack",
		"DoS attacks-SlowHTTPTest": "DoS attack",
		"DoS attacks-Slowloris":    "DoS attack",
		"DoS attacks-GoldenEye":    "DoS attack",

		"DDOS attack-HOIC":       "DDoS attack",
		"DDOS attack-LOIC-UDP":   "DDoS attack",
		"DDoS attacks-LOIC-HTTP": "DDoS attack",

		"Bot":           "Botnet",
		"Infilteration": "Infiltration",

		"Benign": "Benign",
		"Label":  "Benign",
	}
	return LabelMapping{Coarse: coarse}
}

// UnwantedCategories are the coarse labels the reference pipeline drops
// after consolidation.
func UnwantedCategories() []string {
	return []string{"Botnet", "Infiltration", "Web attack"}
}
