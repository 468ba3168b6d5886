package persistence

import (
	"encoding/json"

	"github.com/helixml/segalloc/domain/document"
)

// DocumentMapper maps between document.Document and DocumentModel.
type DocumentMapper struct{}

// ToDomain converts a DocumentModel to a document.Document. Unreadable tier
// name lists map to an empty list.
func (DocumentMapper) ToDomain(m DocumentModel) document.Document {
	var names []string
	_ = json.Unmarshal([]byte(m.TierNames), &names)
	return document.ReconstructDocument(
		m.ID,
		m.Name,
		m.Content,
		m.Hash,
		names,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

// ToModel converts a document.Document to a DocumentModel.
func (DocumentMapper) ToModel(d document.Document) DocumentModel {
	names := d.TierNames()
	if names == nil {
		names = []string{}
	}
	encoded, _ := json.Marshal(names)
	return DocumentModel{
		ID:        d.ID(),
		Name:      d.Name(),
		Content:   d.Content(),
		Hash:      d.Hash(),
		TierNames: string(encoded),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
	}
}
