// Package provenance provides the image provenance rule pack: tag pinning,
// registry allow-listing, digest requirements, and signature verification.
package provenance

import "github.com/kubegate-io/kubegate/internal/rules"

// New returns the image provenance rules in canonical registration order.
func New() []rules.Rule {
	return []rules.Rule{
		rules.FloatingTagRule{},       // IMG_FLOATING_TAG
		rules.RegistryAllowListRule{}, // IMG_REGISTRY_NOT_ALLOWED
		rules.DigestRequiredRule{},    // IMG_DIGEST_REQUIRED
		rules.SignatureRule{},         // IMG_UNVERIFIED_SIGNATURE
	}
}
