package thumbnail

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
)

// signatureSize is the BLAKE2b digest length of URL signatures, in bytes.
const signatureSize = 16

// OnDemand leaves rendering to an external image cache that resizes the
// reference on first request. Public URLs point at that cache as
// <base>/<format>/<reference path>, signed with ?s= when a secret is set.
// As with Static, only the reference format has a private URL.
type OnDemand struct {
	baseURL string
	secret  []byte
}

// NewOnDemand creates an on-demand thumbnail. An empty secret disables
// signatures. BLAKE2b keys longer than 64 bytes are rejected.
func NewOnDemand(baseURL, secret string) (*OnDemand, error) {
	if len(secret) > blake2b.Size {
		return nil, domain.Invalid("thumbnail.ondemand", "secret must be at most 64 bytes")
	}
	return &OnDemand{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
	}, nil
}

func (t *OnDemand) GeneratePublicURL(p Provider, media domain.Media, format string) (string, error) {
	ref, err := p.ReferenceFile(media)
	if err != nil {
		return "", err
	}
	if format == domain.FormatReference {
		return ref.Key(), nil
	}

	path := format + "/" + strings.TrimLeft(ref.Key(), "/")
	u := t.baseURL + "/" + path
	if len(t.secret) == 0 {
		return u, nil
	}
	return u + "?s=" + url.QueryEscape(t.sign(path)), nil
}

func (t *OnDemand) GeneratePrivateURL(p Provider, media domain.Media, format string) (string, error) {
	if format != domain.FormatReference {
		return "", domain.Unsupported("thumbnail.ondemand.private_url",
			fmt.Sprintf("format %q is rendered on demand and has no private file", format))
	}
	ref, err := p.ReferenceFile(media)
	if err != nil {
		return "", err
	}
	return ref.Key(), nil
}

// Generate does nothing; the image cache renders derivatives itself.
func (t *OnDemand) Generate(context.Context, Provider, domain.Media) error {
	return nil
}

// Delete does nothing; the image cache owns its files.
func (t *OnDemand) Delete(context.Context, Provider, domain.Media, ...string) error {
	return nil
}

func (t *OnDemand) CanGenerate() bool {
	return false
}

// Verify reports whether sig was issued for path, which is the part of the
// URL after the base ("<format>/<reference path>").
func (t *OnDemand) Verify(path, sig string) bool {
	if len(t.secret) == 0 {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(t.sign(path)), []byte(sig)) == 1
}

func (t *OnDemand) sign(path string) string {
	h, err := blake2b.New(signatureSize, t.secret)
	if err != nil {
		// Key length is checked in NewOnDemand.
		panic(err)
	}
	h.Write([]byte(path))
	return hex.EncodeToString(h.Sum(nil))
}
