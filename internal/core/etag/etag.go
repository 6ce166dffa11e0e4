// Package etag implements the optimistic-concurrency protocol shared by
// every resource endpoint: deterministic content fingerprints plus the
// evaluation of the If-Match / If-None-Match conditional headers.
package etag

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/zeebo/blake3"
)

// Tag is an opaque fingerprint of one serialized resource representation.
// Tags are never persisted; they are recomputed on every read.
type Tag string

// ReadDecision is the outcome of evaluating If-None-Match on a read.
type ReadDecision int

const (
	ReadFull ReadDecision = iota
	ReadNotModified
)

// WriteDecision is the outcome of evaluating If-Match on a mutation.
type WriteDecision int

const (
	WriteProceed WriteDecision = iota
	WritePreconditionRequired
	WritePreconditionFailed
)

// Fingerprint digests the canonical JSON serialization of v. Equal
// representations always yield equal tags; any field change yields a
// different tag.
func Fingerprint(v any) (Tag, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(raw)
	return Tag(hex.EncodeToString(sum[:16])), nil
}

// Collection derives a collection tag from the ordered member tags and the
// collection's cardinality, so that adding, removing or reordering any
// member changes the result.
func Collection(tags []Tag) Tag {
	h := blake3.New()
	var card [8]byte
	binary.BigEndian.PutUint64(card[:], uint64(len(tags)))
	_, _ = h.Write(card[:])
	for _, t := range tags {
		_, _ = h.Write([]byte(t))
		_, _ = h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return Tag(hex.EncodeToString(sum[:16]))
}

// Quote renders the tag as a quoted HTTP entity-tag.
func (t Tag) Quote() string {
	return `"` + string(t) + `"`
}

// EvaluateRead decides between a full response and 304 Not Modified.
// ifNoneMatch is the raw If-None-Match header value; empty means the
// client holds no prior tag.
func EvaluateRead(ifNoneMatch string, current Tag) ReadDecision {
	if headerMatches(ifNoneMatch, current) {
		return ReadNotModified
	}
	return ReadFull
}

// EvaluatePrecondition decides whether a mutation may proceed. A missing
// If-Match header is a protocol failure, not a force-overwrite: the client
// must read first and submit the tag it saw.
func EvaluatePrecondition(ifMatch string, current Tag) WriteDecision {
	if strings.TrimSpace(ifMatch) == "" {
		return WritePreconditionRequired
	}
	if headerMatches(ifMatch, current) {
		return WriteProceed
	}
	return WritePreconditionFailed
}

// headerMatches reports whether any entity-tag in a conditional header
// value equals current. The "*" wildcard matches any current tag.
func headerMatches(header string, current Tag) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if candidate == "*" {
			return true
		}
		candidate = strings.TrimPrefix(candidate, "W/")
		candidate = strings.Trim(candidate, `"`)
		if Tag(candidate) == current {
			return true
		}
	}
	return false
}
