package models

import (
	"time"

	"sleep-tips/docstore"
)

// Header is used as an embedded type for a document's meta-info
type Header struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func headerOf(doc *docstore.Document) Header {
	return Header{
		ID:        doc.ID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
