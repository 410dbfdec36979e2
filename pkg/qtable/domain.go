package qtable

import "fmt"

// Domains is the host's table of enumeration domains: domain name to the
// ordered symbol list that enum indices point into.
type Domains map[string][]string

// Lookup dereferences one enum index
func (d Domains) Lookup(domain string, idx int64) (string, error) {
	syms, ok := d[domain]
	if !ok {
		return "", fmt.Errorf("unknown enumeration domain %q", domain)
	}
	if idx < 0 || idx >= int64(len(syms)) {
		return "", fmt.Errorf("index %d out of range for domain %q of length %d", idx, domain, len(syms))
	}
	return syms[idx], nil
}

// Enumerate builds an EnumColumn for values against the named domain,
// appending unseen symbols to the domain. It mirrors how the engine
// enumerates a symbol vector.
func (d Domains) Enumerate(domain string, values []string) *EnumColumn {
	syms := d[domain]
	pos := make(map[string]int64, len(syms))
	for i, s := range syms {
		if _, seen := pos[s]; !seen {
			pos[s] = int64(i)
		}
	}

	idx := make([]int64, len(values))
	for i, v := range values {
		p, ok := pos[v]
		if !ok {
			p = int64(len(syms))
			syms = append(syms, v)
			pos[v] = p
		}
		idx[i] = p
	}
	d[domain] = syms
	return &EnumColumn{Domain: domain, Indices: idx}
}
