// Package checkers defines the capability interface rules use when a check
// needs data the manifest alone cannot provide: signature verification,
// digest resolution, and registry allow-list lookup. The engine ships no
// implementation; the host environment supplies one. Rules that depend on an
// absent checker report "check skipped" rather than silently passing.
package checkers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a checker failure. Every kind is recoverable at the
// rule level; the evaluator downgrades checker failures to WARNING-severity
// violations, never a crash.
type ErrorKind string

const (
	ErrorTimeout      ErrorKind = "timeout"
	ErrorUnreachable  ErrorKind = "unreachable"
	ErrorUnauthorized ErrorKind = "unauthorized"
	ErrorNotFound     ErrorKind = "not_found"
)

// Error is the failure type returned by checker calls.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Op names the checker operation that failed (e.g. "verify-signature").
	Op string

	// Err is the underlying cause, may be nil.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("checker %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("checker %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AsCheckerError extracts an *Error from err, if present.
func AsCheckerError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// SignatureVerifier verifies a container image's signature.
// Implementations may perform blocking network I/O; callers invoke them
// through Checkers, which applies the configured timeout.
type SignatureVerifier interface {
	// VerifySignature reports whether the image reference carries a valid
	// signature. A false result with nil error means verification ran and
	// explicitly failed.
	VerifySignature(ctx context.Context, image string) (bool, error)
}

// DigestResolver resolves a tag-based image reference to its digest.
type DigestResolver interface {
	// ResolveDigest returns the sha256 hex digest (without prefix) the
	// given reference currently points at.
	ResolveDigest(ctx context.Context, image string) (string, error)
}

// AllowListResolver supplies the registry allow-list from an external source
// of truth, overriding the statically configured set.
type AllowListResolver interface {
	ResolveRegistryAllowList(ctx context.Context) ([]string, error)
}

// Checkers bundles the optional external capabilities available to rules.
// Any field may be nil, meaning the capability is not configured. All calls
// go through the wrapper methods so the timeout is applied uniformly and a
// deadline expiry always surfaces as ErrorTimeout.
type Checkers struct {
	Signature SignatureVerifier
	Digest    DigestResolver
	AllowList AllowListResolver

	// Timeout bounds each checker call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds checker calls when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// HasSignature reports whether a signature verifier is configured.
func (c *Checkers) HasSignature() bool { return c != nil && c.Signature != nil }

// HasDigest reports whether a digest resolver is configured.
func (c *Checkers) HasDigest() bool { return c != nil && c.Digest != nil }

// HasAllowList reports whether an allow-list resolver is configured.
func (c *Checkers) HasAllowList() bool { return c != nil && c.AllowList != nil }

func (c *Checkers) timeout() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// VerifySignature calls the configured verifier under the timeout.
// The caller must have checked HasSignature first.
func (c *Checkers) VerifySignature(ctx context.Context, image string) (bool, error) {
	tctx, cancel := context.WithTimeout(ensureContext(ctx), c.timeout())
	defer cancel()
	ok, err := c.Signature.VerifySignature(tctx, image)
	if err != nil {
		return false, classify("verify-signature", tctx, err)
	}
	return ok, nil
}

// ResolveDigest calls the configured resolver under the timeout.
// The caller must have checked HasDigest first.
func (c *Checkers) ResolveDigest(ctx context.Context, image string) (string, error) {
	tctx, cancel := context.WithTimeout(ensureContext(ctx), c.timeout())
	defer cancel()
	digest, err := c.Digest.ResolveDigest(tctx, image)
	if err != nil {
		return "", classify("resolve-digest", tctx, err)
	}
	return digest, nil
}

// ResolveRegistryAllowList calls the configured resolver under the timeout.
// The caller must have checked HasAllowList first.
func (c *Checkers) ResolveRegistryAllowList(ctx context.Context) ([]string, error) {
	tctx, cancel := context.WithTimeout(ensureContext(ctx), c.timeout())
	defer cancel()
	hosts, err := c.AllowList.ResolveRegistryAllowList(tctx)
	if err != nil {
		return nil, classify("resolve-allow-list", tctx, err)
	}
	return hosts, nil
}

// classify wraps err as a checker Error. A context deadline expiry becomes
// ErrorTimeout; an already-classified Error passes through unchanged.
func classify(op string, ctx context.Context, err error) error {
	if ce, ok := AsCheckerError(err); ok {
		return ce
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: ErrorTimeout, Op: op, Err: err}
	}
	return &Error{Kind: ErrorUnreachable, Op: op, Err: err}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
