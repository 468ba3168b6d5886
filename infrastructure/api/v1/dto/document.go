package dto

import (
	"strconv"
	"time"

	"github.com/helixml/segalloc/domain/document"
	"github.com/helixml/segalloc/infrastructure/api/jsonapi"
)

// DocumentType is the JSON:API resource type of stored files.
const DocumentType = "document"

// UploadDocumentRequest uploads a file as JSON instead of multipart form data.
type UploadDocumentRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// DocumentAttributes describes a stored file. Content is only included when
// a single document is requested.
type DocumentAttributes struct {
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	Size      int       `json:"size"`
	TierNames []string  `json:"tier_names"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentResource converts d to a resource.
func DocumentResource(d document.Document, withContent bool) *jsonapi.Resource {
	attrs := DocumentAttributes{
		Name:      d.Name(),
		Hash:      d.Hash(),
		Size:      d.Size(),
		TierNames: d.TierNames(),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
	}
	if attrs.TierNames == nil {
		attrs.TierNames = []string{}
	}
	if withContent {
		attrs.Content = d.Content()
	}
	return jsonapi.NewResource(DocumentType, strconv.FormatInt(d.ID(), 10), attrs)
}

// DocumentResources converts docs to resources without content.
func DocumentResources(docs []document.Document) []*jsonapi.Resource {
	out := make([]*jsonapi.Resource, len(docs))
	for i, d := range docs {
		out[i] = DocumentResource(d, false)
	}
	return out
}
