package document

import "github.com/helixml/segalloc/domain/repository"

// Store persists documents.
type Store interface {
	repository.Store[Document]
}

// WithHash filters by content hash.
func WithHash(hash string) repository.Option {
	return repository.WithCondition("hash", hash)
}

// WithName filters by file name.
func WithName(name string) repository.Option {
	return repository.WithCondition("name", name)
}
