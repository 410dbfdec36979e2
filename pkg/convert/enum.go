package convert

import (
	"context"
	"fmt"

	"github.com/ajitpratap0/qparquet/pkg/qtable"
)

// EnumResolver turns an enumerated column into the symbol column it stands
// for. Enumeration domains live in the host engine, so the embedding layer
// supplies the resolver.
type EnumResolver interface {
	Resolve(ctx context.Context, col *qtable.EnumColumn) (*qtable.SymbolColumn, error)
}

// EnumResolverFunc adapts a function to EnumResolver
type EnumResolverFunc func(ctx context.Context, col *qtable.EnumColumn) (*qtable.SymbolColumn, error)

// Resolve calls f
func (f EnumResolverFunc) Resolve(ctx context.Context, col *qtable.EnumColumn) (*qtable.SymbolColumn, error) {
	return f(ctx, col)
}

// DomainResolver resolves enumerations against an in-process copy of the
// host's domains.
type DomainResolver struct {
	Domains qtable.Domains
}

// Resolve dereferences every index of col through its domain
func (r DomainResolver) Resolve(_ context.Context, col *qtable.EnumColumn) (*qtable.SymbolColumn, error) {
	out := make([]string, len(col.Indices))
	for i, idx := range col.Indices {
		if idx == qtable.NullLong {
			continue
		}
		s, err := r.Domains.Lookup(col.Domain, idx)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return &qtable.SymbolColumn{Values: out}, nil
}

// noResolver is used when no resolver was configured
type noResolver struct{}

func (noResolver) Resolve(_ context.Context, col *qtable.EnumColumn) (*qtable.SymbolColumn, error) {
	return nil, fmt.Errorf("no enumeration resolver configured for domain %q", col.Domain)
}
