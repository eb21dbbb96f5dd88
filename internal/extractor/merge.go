package extractor

import "strings"

// Delta is one extraction's partial preference record. Every field is
// optional; absent fields never touch the profile.
type Delta struct {
	Budget       *float64 `json:"budget,omitempty"`
	UsageType    *string  `json:"usage_type,omitempty"`
	BodyTypes    []string `json:"body_types,omitempty"`
	Brands       []string `json:"brands,omitempty"`
	Features     []string `json:"features,omitempty"`
	FuelType     *string  `json:"fuel_type,omitempty"`
	Transmission *string  `json:"transmission,omitempty"`
}

// Preferences is the accumulated preference record built by merging deltas.
type Preferences struct {
	Budget       float64  `json:"budget,omitempty"`
	UsageType    string   `json:"usage_type,omitempty"`
	BodyTypes    []string `json:"body_types,omitempty"`
	Brands       []string `json:"brands,omitempty"`
	Features     []string `json:"features,omitempty"`
	FuelType     string   `json:"fuel_type,omitempty"`
	Transmission string   `json:"transmission,omitempty"`
}

// Apply merges a delta into the preferences field by field. Arrays union
// with case-insensitive dedup; scalars fill empty fields, and an already-set
// scalar is only replaced by a strictly more specific value (one that
// contains the current value as a substring). Nothing is ever cleared.
func (p *Preferences) Apply(d Delta) {
	if d.Budget != nil && *d.Budget > 0 && p.Budget == 0 {
		p.Budget = *d.Budget
	}
	p.UsageType = refineString(p.UsageType, d.UsageType)
	p.FuelType = refineString(p.FuelType, d.FuelType)
	p.Transmission = refineString(p.Transmission, d.Transmission)
	p.BodyTypes = unionStrings(p.BodyTypes, d.BodyTypes)
	p.Brands = unionStrings(p.Brands, d.Brands)
	p.Features = unionStrings(p.Features, d.Features)
}

// Empty reports whether the delta carries no information at all.
func (d Delta) Empty() bool {
	return d.Budget == nil && d.UsageType == nil && d.FuelType == nil &&
		d.Transmission == nil && len(d.BodyTypes) == 0 &&
		len(d.Brands) == 0 && len(d.Features) == 0
}

func refineString(current string, incoming *string) string {
	if incoming == nil {
		return current
	}
	next := strings.TrimSpace(*incoming)
	if next == "" {
		return current
	}
	if current == "" {
		return next
	}
	// "suv" -> "suv compacto" is a refinement; "suv" -> "sedan" is not.
	if strings.Contains(strings.ToLower(next), strings.ToLower(current)) {
		return next
	}
	return current
}

func unionStrings(current, incoming []string) []string {
	if len(incoming) == 0 {
		return current
	}
	seen := make(map[string]bool, len(current)+len(incoming))
	for _, v := range current {
		seen[strings.ToLower(v)] = true
	}
	out := current
	for _, v := range incoming {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
