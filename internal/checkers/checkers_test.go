package checkers

import (
	"context"
	"errors"
	"testing"
	"time"
)

// slowVerifier blocks until its context expires.
type slowVerifier struct{}

func (slowVerifier) VerifySignature(ctx context.Context, image string) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

// fixedVerifier returns a canned result.
type fixedVerifier struct {
	ok  bool
	err error
}

func (f fixedVerifier) VerifySignature(context.Context, string) (bool, error) {
	return f.ok, f.err
}

type fixedResolver struct {
	digest string
	err    error
}

func (f fixedResolver) ResolveDigest(context.Context, string) (string, error) {
	return f.digest, f.err
}

func TestCheckers_NilSafeCapabilityProbes(t *testing.T) {
	var c *Checkers
	if c.HasSignature() || c.HasDigest() || c.HasAllowList() {
		t.Error("nil Checkers must report no capabilities")
	}
	empty := &Checkers{}
	if empty.HasSignature() || empty.HasDigest() || empty.HasAllowList() {
		t.Error("empty Checkers must report no capabilities")
	}
}

func TestVerifySignature_TimeoutClassified(t *testing.T) {
	c := &Checkers{Signature: slowVerifier{}, Timeout: 10 * time.Millisecond}
	_, err := c.VerifySignature(context.Background(), "registry.bank.internal/app:1.0")
	ce, ok := AsCheckerError(err)
	if !ok {
		t.Fatalf("err = %v; want *checkers.Error", err)
	}
	if ce.Kind != ErrorTimeout {
		t.Errorf("Kind = %q; want timeout", ce.Kind)
	}
}

func TestVerifySignature_ClassifiedErrorPassesThrough(t *testing.T) {
	want := &Error{Kind: ErrorUnauthorized, Op: "verify-signature"}
	c := &Checkers{Signature: fixedVerifier{err: want}}
	_, err := c.VerifySignature(context.Background(), "img")
	ce, ok := AsCheckerError(err)
	if !ok || ce.Kind != ErrorUnauthorized {
		t.Errorf("err = %v; want the original unauthorized error", err)
	}
}

func TestVerifySignature_PlainErrorBecomesUnreachable(t *testing.T) {
	c := &Checkers{Signature: fixedVerifier{err: errors.New("dial tcp: refused")}}
	_, err := c.VerifySignature(context.Background(), "img")
	ce, ok := AsCheckerError(err)
	if !ok {
		t.Fatalf("err = %v; want *checkers.Error", err)
	}
	if ce.Kind != ErrorUnreachable {
		t.Errorf("Kind = %q; want unreachable", ce.Kind)
	}
	if ce.Unwrap() == nil {
		t.Error("underlying cause lost")
	}
}

func TestVerifySignature_SuccessPassesResult(t *testing.T) {
	c := &Checkers{Signature: fixedVerifier{ok: true}}
	ok, err := c.VerifySignature(context.Background(), "img")
	if err != nil || !ok {
		t.Errorf("got (%v, %v); want (true, nil)", ok, err)
	}
}

func TestVerifySignature_NilContextAccepted(t *testing.T) {
	c := &Checkers{Signature: fixedVerifier{ok: true}}
	if _, err := c.VerifySignature(nil, "img"); err != nil { //nolint:staticcheck
		t.Errorf("nil context: %v", err)
	}
}

func TestResolveDigest_Success(t *testing.T) {
	c := &Checkers{Digest: fixedResolver{digest: "abc123def456"}}
	digest, err := c.ResolveDigest(context.Background(), "img")
	if err != nil || digest != "abc123def456" {
		t.Errorf("got (%q, %v)", digest, err)
	}
}

func TestError_Message(t *testing.T) {
	e := &Error{Kind: ErrorTimeout, Op: "resolve-digest", Err: context.DeadlineExceeded}
	if got := e.Error(); got == "" || !errors.Is(e, context.DeadlineExceeded) {
		t.Errorf("Error() = %q, Is(DeadlineExceeded) = %t", got, errors.Is(e, context.DeadlineExceeded))
	}
}
