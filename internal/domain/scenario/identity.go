package scenario

import "strings"

// LocalTag marks an image that only exists in the local container store.
const LocalTag = ":local"

// Identity is how an agent declares which image it runs. It is either a
// DirectImage or a CatalogID, never both.
type Identity interface {
	isIdentity()
	String() string
}

// DirectImage names a container image reference directly.
type DirectImage struct {
	Ref string
}

func (DirectImage) isIdentity() {}

func (d DirectImage) String() string { return d.Ref }

// CatalogID is an opaque identifier resolved to an image by the agent catalog.
type CatalogID struct {
	ID string
}

func (CatalogID) isIdentity() {}

func (c CatalogID) String() string { return c.ID }

// NewIdentity builds an Identity from the two optional scenario fields.
// Empty strings count as absent. Exactly one of image and catalogID must be set;
// otherwise a *ConfigError naming label is returned.
func NewIdentity(label, image, catalogID string) (Identity, error) {
	hasImage := image != ""
	hasID := catalogID != ""

	switch {
	case hasImage && hasID:
		return nil, &ConfigError{
			Agent:  label,
			Field:  "image",
			Reason: "has both 'image' and 'agentbeats_id' - use one or the other",
		}
	case !hasImage && !hasID:
		return nil, &ConfigError{
			Agent:  label,
			Field:  "image",
			Reason: "must have either 'image' or 'agentbeats_id' field",
		}
	case hasImage:
		return DirectImage{Ref: image}, nil
	default:
		return CatalogID{ID: catalogID}, nil
	}
}

// IsLocalImage reports whether ref can only be run from local content and
// must never be pulled from a registry.
func IsLocalImage(ref string) bool {
	return strings.HasSuffix(ref, LocalTag)
}
