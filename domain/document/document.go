// Package document provides the stored annotation file entity.
package document

import (
	"encoding/hex"
	"slices"
	"time"

	"github.com/zeebo/blake3"
)

// Document is an uploaded annotation file kept in the library. Only the file
// itself is stored; allocation state lives in sessions.
type Document struct {
	id        int64
	name      string
	content   string
	hash      string
	tierNames []string
	createdAt time.Time
	updatedAt time.Time
}

// NewDocument creates a Document from decoded file text.
func NewDocument(name, content string, tierNames []string) Document {
	return Document{
		name:      name,
		content:   content,
		hash:      Hash(content),
		tierNames: slices.Clone(tierNames),
	}
}

// ReconstructDocument recreates a Document from persistence.
func ReconstructDocument(
	id int64,
	name, content, hash string,
	tierNames []string,
	createdAt, updatedAt time.Time,
) Document {
	return Document{
		id:        id,
		name:      name,
		content:   content,
		hash:      hash,
		tierNames: slices.Clone(tierNames),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the document ID; 0 until stored.
func (d Document) ID() int64 { return d.id }

// Name returns the original file name.
func (d Document) Name() string { return d.name }

// Content returns the decoded file text.
func (d Document) Content() string { return d.content }

// Hash returns the BLAKE3 hex digest of the content.
func (d Document) Hash() string { return d.hash }

// TierNames returns every tier name in the file, in document order.
func (d Document) TierNames() []string { return slices.Clone(d.tierNames) }

// Size returns the content length in bytes.
func (d Document) Size() int { return len(d.content) }

// CreatedAt returns when the document was stored.
func (d Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns when the document was last stored.
func (d Document) UpdatedAt() time.Time { return d.updatedAt }

// WithName returns a copy with a different name.
func (d Document) WithName(name string) Document {
	d.name = name
	return d
}

// Hash returns the BLAKE3 hex digest of content.
func Hash(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
