// Package ident derives the couple identifier that namespaces the remote
// document, and generates entity identifiers.
package ident

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/hungduong/loveanniversary/internal/errors"
	"github.com/hungduong/loveanniversary/internal/storage"
)

// couplePrefix marks generated couple identifiers.
const couplePrefix = "couple_"

// NewID generates an entity identifier from a high-resolution timestamp plus
// a random suffix. Collisions are treated as negligible, not prevented.
func NewID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return ts + randomSuffix(9)
}

// randomSuffix returns n hex characters of fresh randomness.
func randomSuffix(n int) string {
	u := uuid.New()
	hex := strings.ReplaceAll(u.String(), "-", "")
	if n > len(hex) {
		n = len(hex)
	}
	return hex[:n]
}

// Resolver derives and remembers the couple identifier.
type Resolver struct {
	kv *storage.KV
}

// NewResolver creates a Resolver over the local key-value storage.
func NewResolver(kv *storage.KV) *Resolver {
	return &Resolver{kv: kv}
}

// Resolve returns the couple identifier for this session. Precedence:
// an inbound request parameter, then the locally persisted identifier, then
// a freshly generated one. Whichever wins is persisted. The second return
// reports whether the identifier was generated just now, so callers can
// surface the one-time shareable-link prompt.
func (r *Resolver) Resolve(param string) (string, bool, error) {
	if param != "" {
		if err := r.kv.Put(storage.KeyCoupleID, param); err != nil {
			return "", false, err
		}
		return param, false, nil
	}

	stored, err := r.kv.Get(storage.KeyCoupleID)
	if err == nil && stored != "" {
		return stored, false, nil
	}
	if err != nil && !apperrors.Is(err, apperrors.ErrKeyNotFound) {
		return "", false, err
	}

	id := couplePrefix + strconv.FormatInt(time.Now().UnixMilli(), 36) + randomSuffix(5)
	if err := r.kv.Put(storage.KeyCoupleID, id); err != nil {
		return "", false, err
	}
	return id, true, nil
}

// ShareLink builds the link one partner sends the other to bind both
// sessions to the same remote document.
func ShareLink(base, coupleID string) string {
	return base + "?coupleId=" + url.QueryEscape(coupleID)
}
