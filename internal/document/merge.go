package document

// MergeOption configures Merge.
type MergeOption func(*mergeConfig)

type mergeConfig struct {
	appendLists bool
}

// WithListAppend makes Merge concatenate lists found under the same key
// instead of replacing the base list.
func WithListAppend() MergeOption {
	return func(c *mergeConfig) {
		c.appendLists = true
	}
}

// Merge returns a new document holding base overlaid with override.
//
// Keys only in base keep their base position, keys only in override follow
// in override order. Nested mappings present on both sides are merged
// recursively; any other shared value is taken from override. Neither input
// is modified and the result shares no structure with them.
func Merge(base, override *Document, opts ...MergeOption) *Document {
	var cfg mergeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return merge(base, override, &cfg)
}

func merge(base, override *Document, cfg *mergeConfig) *Document {
	out := base.Clone()
	if out == nil {
		out = New()
	}

	for k, ov := range override.All() {
		bv, ok := out.Get(k)
		if !ok {
			out.Set(k, cloneValue(ov))
			continue
		}

		out.Set(k, mergeValue(bv, ov, cfg))
	}

	return out
}

// bv is already owned by the result; ov must be copied.
func mergeValue(bv, ov any, cfg *mergeConfig) any {
	switch o := ov.(type) {
	case *Document:
		if b, ok := bv.(*Document); ok {
			return merge(b, o, cfg)
		}
	case []any:
		if b, ok := bv.([]any); ok && cfg.appendLists {
			out := make([]any, 0, len(b)+len(o))
			out = append(out, b...)

			for _, item := range o {
				out = append(out, cloneValue(item))
			}

			return out
		}
	}

	return cloneValue(ov)
}
