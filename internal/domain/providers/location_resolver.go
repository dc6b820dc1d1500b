package providers

import "github.com/billharmony/backend/internal/domain/entities"

// ResolutionSource records how a location token was turned into coordinates
type ResolutionSource string

const (
	// SourceZipTable means the token was a zip code found in the reference zip table
	SourceZipTable ResolutionSource = "zip_table"
	// SourceKnownPlace means the token matched a known city name or zip fragment
	SourceKnownPlace ResolutionSource = "known_place"
	// SourceFallback means nothing matched and the configured default coordinate was used
	SourceFallback ResolutionSource = "fallback"
)

// Resolution is a resolved coordinate plus its provenance
type Resolution struct {
	Token    string            `json:"token"`
	Location entities.Location `json:"location"`
	Source   ResolutionSource  `json:"source"`
	// Label names the matched place, e.g. "Pasadena" or the fallback label
	Label string `json:"label,omitempty"`
}

// IsFallback reports whether the resolution is the default coordinate rather than a real match
func (r Resolution) IsFallback() bool {
	return r.Source == SourceFallback
}

// LocationResolver maps a free-text location token to coordinates.
type LocationResolver interface {
	// Lookup reports false when the token matches nothing
	Lookup(token string) (Resolution, bool)
	// Resolve never fails: an unmatched token yields a Resolution with SourceFallback
	Resolve(token string) Resolution
}
