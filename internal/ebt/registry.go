package ebt

import (
	"math"
	"sort"

	"grimm.is/ebtranslate/internal/getopt"
)

// OptionSpan is the number of option ids reserved for each extension.
const OptionSpan = 256

// maxOptionID bounds the id space; a registration that would cross it
// fails like an allocation failure.
const maxOptionID = math.MaxInt32

type band struct {
	start int
	ext   Extension
}

// Registry holds the merged option table: the builtin options followed by
// the options of every registered extension, each shifted into its own id
// band. It is reset at the start of every invocation.
type Registry struct {
	builtin []getopt.Option
	options []getopt.Option
	bands   []band
	offset  int
	limit   int
}

// NewRegistry creates a registry over a builtin option table. Builtin ids
// must stay below OptionSpan.
func NewRegistry(builtin []getopt.Option) *Registry {
	r := &Registry{builtin: builtin, limit: maxOptionID}
	r.Reset()
	return r
}

// Reset releases every band and restores the id counter.
func (r *Registry) Reset() {
	r.options = append([]getopt.Option(nil), r.builtin...)
	r.bands = nil
	r.offset = 0
}

// Register reserves a fresh band for e and merges its options. On failure
// the table is left exactly as it was.
func (r *Registry) Register(e Extension) (int, error) {
	if r.offset > r.limit-2*OptionSpan {
		return 0, otherErrorf("Can't alloc memory")
	}
	start := r.offset + OptionSpan

	opts := e.Options()
	merged := make([]getopt.Option, 0, len(r.options)+len(opts))
	merged = append(merged, r.options...)
	for _, o := range opts {
		if o.Val < 0 || o.Val >= OptionSpan {
			return 0, otherErrorf("extension %s: option --%s id %d outside its band", e.Name(), o.Name, o.Val)
		}
		o.Val += start
		merged = append(merged, o)
	}

	r.offset = start
	r.options = merged
	r.bands = append(r.bands, band{start: start, ext: e})
	return start, nil
}

// Options returns the merged option table.
func (r *Registry) Options() []getopt.Option {
	return r.options
}

// Resolve maps a merged id to its extension and provider-local id.
func (r *Registry) Resolve(id int) (Extension, int, bool) {
	// bands are appended with increasing starts
	i := sort.Search(len(r.bands), func(i int) bool {
		return r.bands[i].start+OptionSpan > id
	})
	if i == len(r.bands) || id < r.bands[i].start {
		return nil, 0, false
	}
	return r.bands[i].ext, id - r.bands[i].start, true
}

// Len is the number of registered extensions.
func (r *Registry) Len() int {
	return len(r.bands)
}
