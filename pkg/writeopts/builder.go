package writeopts

import (
	"math"
	"slices"

	"github.com/ajitpratap0/qparquet/pkg/errors"
)

// BuildOption tunes how Build treats option values
type BuildOption func(*buildSettings)

type buildSettings struct {
	lenient bool
}

// Lenient makes Build ignore options whose value has the wrong shape instead
// of failing. Unknown option names and unsupported codecs still fail.
func Lenient() BuildOption {
	return func(s *buildSettings) { s.lenient = true }
}

// Build folds opts, in order, into a WriteConfig starting from base.
// The first unknown name or invalid value aborts with an ErrorTypeConfig error.
func Build(base WriteConfig, opts Options, bopts ...BuildOption) (WriteConfig, error) {
	var s buildSettings
	for _, o := range bopts {
		o(&s)
	}

	cfg := base
	for _, opt := range opts {
		next, err := s.apply(cfg, opt)
		if err != nil {
			return WriteConfig{}, err
		}
		cfg = next
	}
	return cfg, nil
}

// apply returns cfg with one option folded in. cfg itself is not modified.
func (s buildSettings) apply(cfg WriteConfig, opt Option) (WriteConfig, error) {
	if !IsAllowed(opt.Name) {
		return cfg, errors.Newf(errors.ErrorTypeConfig, "invalid option: %s", opt.Name)
	}

	switch opt.Name {
	case OptCompression:
		name, _ := opt.Value.(string)
		if _, ok := codecs[name]; !ok {
			return cfg, errors.Newf(errors.ErrorTypeConfig, "unsupported compression: %v", opt.Value).
				WithDetail("option", opt.Name)
		}
		cfg.codec = name

	case OptEnableDict, OptDisableDict:
		enable := opt.Name == OptEnableDict
		if b, ok := opt.Value.(bool); ok {
			// false leaves the setting alone rather than inverting it
			if b {
				cfg.dictDefault = &enable
			}
			return cfg, nil
		}
		cols, ok := columnNames(opt.Value)
		if !ok {
			return s.mismatch(cfg, opt, "a boolean, a column name or a list of column names")
		}
		dicts := slices.Clip(cfg.dictColumns)
		for _, col := range cols {
			dicts = append(dicts, columnDict{column: col, enabled: enable})
		}
		cfg.dictColumns = dicts

	case OptChunkSize:
		n, ok := positiveInt(opt.Value)
		if !ok {
			return s.mismatch(cfg, opt, "a positive integer")
		}
		cfg.maxRowGroupLength = n

	case OptUseThreads:
		b, ok := opt.Value.(bool)
		if !ok {
			return s.mismatch(cfg, opt, "a boolean")
		}
		cfg.useThreads = b

	case OptStoreSchema:
		b, ok := opt.Value.(bool)
		if !ok {
			return s.mismatch(cfg, opt, "a boolean")
		}
		if b {
			cfg.storeSchema = true
		}
	}

	return cfg, nil
}

func (s buildSettings) mismatch(cfg WriteConfig, opt Option, want string) (WriteConfig, error) {
	if s.lenient {
		return cfg, nil
	}
	return cfg, errors.Newf(errors.ErrorTypeConfig, "option %s expects %s, got %T", opt.Name, want, opt.Value).
		WithDetail("option", opt.Name)
}

// columnNames accepts a single name or a list of names. Empty names are dropped.
func columnNames(v any) ([]string, bool) {
	var names []string
	switch t := v.(type) {
	case string:
		names = []string{t}
	case []string:
		names = t
	case []any:
		names = make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			names = append(names, s)
		}
	default:
		return nil, false
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out, true
}

// positiveInt accepts any Go integer and integral float64 values (as decoded from JSON)
func positiveInt(v any) (int64, bool) {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int8:
		n = int64(t)
	case int16:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case uint:
		n = int64(t)
	case uint8:
		n = int64(t)
	case uint16:
		n = int64(t)
	case uint32:
		n = int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		n = int64(t)
	case float64:
		if t != math.Trunc(t) || t > math.MaxInt64 {
			return 0, false
		}
		n = int64(t)
	default:
		return 0, false
	}
	return n, n > 0
}
