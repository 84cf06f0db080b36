package rules

import (
	"fmt"
	"regexp"

	"github.com/kubegate-io/kubegate/internal/checkers"
	"github.com/kubegate-io/kubegate/internal/models"
)

// floatingTags is the fixed set of tags that track a moving target.
// Additional floating patterns come from the configured floating_tag_pattern.
var floatingTags = map[string]struct{}{
	"latest": {},
	"stable": {},
	"main":   {},
	"master": {},
}

// parseContainerImage parses the container's image reference. A malformed
// reference is representable as a violation, never a crash: the returned
// violation carries the given rule ID and the parse failure message.
func parseContainerImage(ruleID string, c *models.ContainerSpec) (models.ImageReference, *models.Violation) {
	ref, err := models.ParseImageReference(c.Image)
	if err != nil {
		return models.ImageReference{}, &models.Violation{
			RuleID:       ruleID,
			Severity:     models.SeverityError,
			ResourcePath: c.FieldPath + ".image",
			Message:      fmt.Sprintf("container %q has an unparseable image reference %q: %v", c.Name, c.Image, err),
			Remediation:  "Use a well-formed image reference: [registry/]repository[:tag][@sha256:digest].",
		}
	}
	return ref, nil
}

// ── IMG_FLOATING_TAG ─────────────────────────────────────────────────────────

// FloatingTagRule fires for each container whose image is not pinned by
// digest and uses a floating tag: no tag at all (implicit latest), a tag from
// the fixed floating set, or a tag matching the configured floating pattern.
type FloatingTagRule struct {
	appliesToAll
}

func (r FloatingTagRule) ID() string   { return "IMG_FLOATING_TAG" }
func (r FloatingTagRule) Name() string { return "Image Tag Must Be Pinned" }

func (r FloatingTagRule) Evaluate(ctx RuleContext) []models.Violation {
	pattern, err := ctx.Config().FloatingTagRegexp()
	if err != nil {
		return []models.Violation{invalidPatternViolation(r.ID(), err)}
	}

	var violations []models.Violation
	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]
		ref, bad := parseContainerImage(r.ID(), c)
		if bad != nil {
			violations = append(violations, *bad)
			continue
		}
		if ref.Pinned() {
			continue
		}

		var reason string
		switch {
		case ref.Tag == "":
			reason = "no tag or digest (implicit \"latest\")"
		case isFloatingTag(ref.Tag, pattern):
			reason = fmt.Sprintf("floating tag %q", ref.Tag)
		default:
			continue
		}

		violations = append(violations, models.Violation{
			RuleID:       r.ID(),
			Severity:     models.SeverityError,
			ResourcePath: c.FieldPath + ".image",
			Message:      fmt.Sprintf("container %q uses image %q with %s", c.Name, c.Image, reason),
			Remediation:  "Pin the image to an immutable version tag, preferably with a sha256 digest.",
		})
	}
	return violations
}

func isFloatingTag(tag string, pattern *regexp.Regexp) bool {
	if _, ok := floatingTags[tag]; ok {
		return true
	}
	return pattern != nil && pattern.MatchString(tag)
}

// ── IMG_REGISTRY_NOT_ALLOWED ─────────────────────────────────────────────────

// RegistryAllowListRule fires for each container whose image registry host is
// not in the allow-list. The list is injected through configuration; when an
// external allow-list checker is configured its result takes precedence over
// the static set, and a checker failure falls back to the static set with a
// WARNING recorded.
type RegistryAllowListRule struct {
	appliesToAll
}

func (r RegistryAllowListRule) ID() string   { return "IMG_REGISTRY_NOT_ALLOWED" }
func (r RegistryAllowListRule) Name() string { return "Image Registry Must Be Allow-Listed" }

func (r RegistryAllowListRule) Evaluate(ctx RuleContext) []models.Violation {
	cfg := ctx.Config()

	allowed := func(host string) bool { return cfg.IsAllowedRegistry(host) }

	var violations []models.Violation
	if ctx.Checkers.HasAllowList() {
		hosts, err := ctx.Checkers.ResolveRegistryAllowList(ctx.Ctx())
		if err != nil {
			violations = append(violations, checkerWarning(r.ID(), "", "registry allow-list resolution", err))
		} else {
			set := make(map[string]struct{}, len(hosts))
			for _, h := range hosts {
				set[h] = struct{}{}
			}
			allowed = func(host string) bool {
				_, ok := set[host]
				return ok
			}
		}
	}

	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]
		ref, bad := parseContainerImage(r.ID(), c)
		if bad != nil {
			violations = append(violations, *bad)
			continue
		}
		if allowed(ref.Registry) {
			continue
		}

		registry := ref.Registry
		if registry == "" {
			registry = "docker.io (implicit)"
		}
		violations = append(violations, models.Violation{
			RuleID:       r.ID(),
			Severity:     models.SeverityError,
			ResourcePath: c.FieldPath + ".image",
			Message:      fmt.Sprintf("container %q pulls from registry %q which is not in the allow-list", c.Name, registry),
			Remediation:  "Mirror the image into an approved registry and reference it from there.",
		})
	}
	return violations
}

// ── IMG_DIGEST_REQUIRED ──────────────────────────────────────────────────────

// DigestRequiredRule fires for each container whose image has no digest when
// the manifest targets a restricted (production-like) namespace. The rule is
// scoped by its appliesTo predicate; in other namespaces it counts as skipped.
// When a digest resolver checker is configured, the violation names the digest
// the tag currently resolves to; a resolver failure degrades to the standard
// "check skipped" WARNING alongside the violation.
type DigestRequiredRule struct{}

func (r DigestRequiredRule) ID() string   { return "IMG_DIGEST_REQUIRED" }
func (r DigestRequiredRule) Name() string { return "Image Digest Required in Restricted Namespaces" }

func (r DigestRequiredRule) AppliesTo(ctx RuleContext) bool {
	return ctx.Config().IsRestrictedNamespace(ctx.Manifest.Namespace)
}

func (r DigestRequiredRule) Evaluate(ctx RuleContext) []models.Violation {
	var violations []models.Violation
	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]
		ref, bad := parseContainerImage(r.ID(), c)
		if bad != nil {
			violations = append(violations, *bad)
			continue
		}
		if ref.Pinned() {
			continue
		}

		remediation := "Resolve the tag to its sha256 digest and reference the image as repository@sha256:<digest>."
		if ctx.Checkers.HasDigest() {
			digest, err := ctx.Checkers.ResolveDigest(ctx.Ctx(), c.Image)
			if err != nil {
				violations = append(violations, checkerWarning(r.ID(), c.FieldPath+".image", "digest resolution", err))
			} else {
				repo := ref.Repository
				if ref.Registry != "" {
					repo = ref.Registry + "/" + ref.Repository
				}
				remediation = fmt.Sprintf("Pin the image as %s@sha256:%s.", repo, digest)
			}
		}

		violations = append(violations, models.Violation{
			RuleID:       r.ID(),
			Severity:     models.SeverityError,
			ResourcePath: c.FieldPath + ".image",
			Message: fmt.Sprintf(
				"container %q image %q is not pinned by digest; namespace %q requires digest pinning",
				c.Name, c.Image, ctx.Manifest.Namespace,
			),
			Remediation: remediation,
		})
	}
	return violations
}

// ── IMG_UNVERIFIED_SIGNATURE ─────────────────────────────────────────────────

// SignatureRule verifies each container image's signature through the
// external signature checker. With no checker configured it reports a
// WARNING-severity "check skipped" violation: an unresolved check must never
// be mistaken for compliance.
type SignatureRule struct {
	appliesToAll
}

func (r SignatureRule) ID() string   { return "IMG_UNVERIFIED_SIGNATURE" }
func (r SignatureRule) Name() string { return "Image Signature Must Verify" }

func (r SignatureRule) Evaluate(ctx RuleContext) []models.Violation {
	if !ctx.Checkers.HasSignature() {
		return []models.Violation{{
			RuleID:      r.ID(),
			Severity:    models.SeverityWarning,
			Message:     "check skipped: no signature checker configured",
			Remediation: "Configure a signature verification checker to enforce image provenance.",
		}}
	}

	var violations []models.Violation
	for i := range ctx.Manifest.Containers {
		c := &ctx.Manifest.Containers[i]
		ok, err := ctx.Checkers.VerifySignature(ctx.Ctx(), c.Image)
		if err != nil {
			violations = append(violations, checkerWarning(r.ID(), c.FieldPath+".image", "signature verification", err))
			continue
		}
		if ok {
			continue
		}
		violations = append(violations, models.Violation{
			RuleID:       r.ID(),
			Severity:     models.SeverityError,
			ResourcePath: c.FieldPath + ".image",
			Message:      fmt.Sprintf("container %q image %q failed signature verification", c.Name, c.Image),
			Remediation:  "Sign the image with an approved key and push the signature to the registry.",
		})
	}
	return violations
}

// invalidPatternViolation surfaces a regex the validator never saw, as
// happens when a Config is built in code and handed straight to the engine.
// Flagged internal so the run counts as a tooling failure, not a policy
// verdict.
func invalidPatternViolation(ruleID string, err error) models.Violation {
	return models.Violation{
		RuleID:   ruleID,
		Severity: models.SeverityError,
		Internal: true,
		Message:  fmt.Sprintf("invalid policy config: %v", err),
	}
}

// checkerWarning converts a checker failure into the WARNING-severity
// "check skipped" violation mandated for unavailable or failing checkers.
func checkerWarning(ruleID, resourcePath, what string, err error) models.Violation {
	msg := fmt.Sprintf("check skipped: %s failed", what)
	if ce, ok := checkers.AsCheckerError(err); ok {
		msg = fmt.Sprintf("check skipped: %s failed (%s)", what, ce.Kind)
	}
	return models.Violation{
		RuleID:       ruleID,
		Severity:     models.SeverityWarning,
		ResourcePath: resourcePath,
		Message:      msg,
	}
}
