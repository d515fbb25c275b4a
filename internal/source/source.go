// Package source maps configured source descriptors to fetch strategies.
// Each supported platform registers one Strategy implementation; adding a
// platform never touches the orchestrator.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okaneo/jobscout/internal/model"
)

// DefaultCap is the per-source result cap applied when a descriptor does not
// override it.
const DefaultCap = 500

// Mode tells the fetcher how to drive a strategy.
type Mode int

const (
	// ModeAPI: paginated structured-JSON endpoint.
	ModeAPI Mode = iota
	// ModeHTML: a free-form career page, retrieved exactly once.
	ModeHTML
)

// Descriptor is the configuration entity for one source. Immutable for the
// duration of a run.
type Descriptor struct {
	Name     string // company label, used for attribution and reporting
	Platform string // registered strategy name
	Token    string // board token / company slug for hosted ATS platforms
	Endpoint string // explicit endpoint or page URL (workday, html)
	Keywords string // optional search terms for platforms that take them
	Cap      int    // per-source result cap; 0 means DefaultCap
}

// EffectiveCap returns the descriptor's cap, falling back to DefaultCap.
func (d Descriptor) EffectiveCap() int {
	if d.Cap > 0 {
		return d.Cap
	}
	return DefaultCap
}

// Page carries pagination state between ParsePage and the next BuildRequest.
// Which field a strategy uses depends on its pagination style; a zero Page is
// always the first page.
type Page struct {
	Num    int    // page-number style
	Offset int    // offset/skip style
	Cursor string // opaque-cursor style
}

// Strategy is the capability set a platform implements. BuildRequest and
// ParsePage are stateless: all pagination state travels through Page, so a
// strategy instance is safe to reuse.
type Strategy interface {
	// Platform returns the tag recorded on postings from this strategy.
	Platform() string
	// Mode reports whether the fetcher should paginate (API) or perform a
	// single retrieval (HTML).
	Mode() Mode
	// BuildRequest constructs the HTTP request for the given page.
	BuildRequest(ctx context.Context, page Page) (*http.Request, error)
	// ParsePage extracts the raw records of one page and the next page to
	// request, or nil when pagination is done. HTML strategies return no
	// records; the fetcher keeps the body instead.
	ParsePage(body []byte, page Page) (records []json.RawMessage, next *Page, err error)
}

// RecordMapper maps one raw API record to the canonical posting shape.
// Implemented by every API-mode strategy. Unmapped or missing fields become
// zero values, never an error; a malformed record yields an invalid posting
// which the extractor drops.
type RecordMapper interface {
	MapRecord(raw json.RawMessage) model.Posting
}

// Factory builds a strategy for one descriptor.
type Factory func(desc Descriptor) (Strategy, error)

// Registry resolves descriptors to strategies.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with all built-in platforms registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("greenhouse", newGreenhouse)
	r.Register("lever", newLever)
	r.Register("ashby", newAshby)
	r.Register("workday", newWorkday)
	r.Register("amazon", newAmazon)
	r.Register("microsoft", newMicrosoft)
	r.Register("html", newHTML)
	return r
}

// Register adds or replaces the factory for a platform.
func (r *Registry) Register(platform string, f Factory) {
	r.factories[platform] = f
}

// Resolve returns the strategy for the descriptor's platform, or
// model.ErrUnsupportedPlatform when none is registered.
func (r *Registry) Resolve(desc Descriptor) (Strategy, error) {
	f, ok := r.factories[desc.Platform]
	if !ok {
		return nil, fmt.Errorf("resolving %s (%s): %w", desc.Name, desc.Platform, model.ErrUnsupportedPlatform)
	}
	return f(desc)
}

// Platforms lists the registered platform names (unordered).
func (r *Registry) Platforms() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	return out
}
