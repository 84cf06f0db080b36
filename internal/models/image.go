package models

import (
	"fmt"
	"regexp"
	"strings"
)

// ImageReference is the parsed form of a container image string.
// A reference with neither Tag nor Digest is equivalent to an implicit
// "latest" tag; EffectiveTag resolves that.
type ImageReference struct {
	// Registry is the registry host (with optional port), empty when the
	// reference uses the implicit default registry.
	Registry string

	// Repository is the image path without registry, tag, or digest.
	Repository string

	// Tag is the tag component, empty when absent.
	Tag string

	// Digest is the sha256 hex string without the "sha256:" prefix,
	// empty when absent.
	Digest string
}

var digestPattern = regexp.MustCompile(`^sha256:([0-9a-fA-F]{6,64})$`)

// ParseImageReference splits a raw image string into its components.
//
// The digest is split off at the last '@'; the tag at the last ':' of the
// remaining name (the registry, identified as a first path segment containing
// a dot or colon, is removed first so a registry port is never mistaken for
// a tag separator). A malformed reference returns an error so rules can
// surface it as a violation rather than a crash.
func ParseImageReference(raw string) (ImageReference, error) {
	if strings.TrimSpace(raw) == "" {
		return ImageReference{}, fmt.Errorf("empty image reference")
	}

	var ref ImageReference
	name := raw

	if at := strings.LastIndex(name, "@"); at >= 0 {
		digest := name[at+1:]
		m := digestPattern.FindStringSubmatch(digest)
		if m == nil {
			return ImageReference{}, fmt.Errorf("malformed digest %q in image reference %q", digest, raw)
		}
		ref.Digest = strings.ToLower(m[1])
		name = name[:at]
	}

	// A registry host is recognised by a dot or colon before the first slash.
	if slash := strings.Index(name, "/"); slash > 0 {
		host := name[:slash]
		if strings.ContainsAny(host, ".:") || host == "localhost" {
			ref.Registry = host
			name = name[slash+1:]
		}
	}

	if colon := strings.LastIndex(name, ":"); colon >= 0 {
		ref.Tag = name[colon+1:]
		name = name[:colon]
		if ref.Tag == "" {
			return ImageReference{}, fmt.Errorf("empty tag in image reference %q", raw)
		}
	}

	if name == "" || strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return ImageReference{}, fmt.Errorf("malformed repository in image reference %q", raw)
	}
	ref.Repository = name

	return ref, nil
}

// Pinned reports whether the reference is pinned to a digest.
func (r ImageReference) Pinned() bool { return r.Digest != "" }

// EffectiveTag returns the tag the container runtime would resolve:
// the explicit tag, or "latest" when neither tag nor digest is present.
func (r ImageReference) EffectiveTag() string {
	if r.Tag != "" {
		return r.Tag
	}
	if r.Digest != "" {
		return ""
	}
	return "latest"
}

// String reassembles the reference in canonical form.
func (r ImageReference) String() string {
	var b strings.Builder
	if r.Registry != "" {
		b.WriteString(r.Registry)
		b.WriteString("/")
	}
	b.WriteString(r.Repository)
	if r.Tag != "" {
		b.WriteString(":")
		b.WriteString(r.Tag)
	}
	if r.Digest != "" {
		b.WriteString("@sha256:")
		b.WriteString(r.Digest)
	}
	return b.String()
}
