// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "time"

// Category classifies what aspect of a product a knowledge entry describes.
type Category string

const (
	CategoryProductInfo      Category = "product_info"
	CategoryFeatures         Category = "features"
	CategoryUsage            Category = "usage"
	CategoryCareInstructions Category = "care_instructions"
	CategorySpecifications   Category = "specifications"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryProductInfo, CategoryFeatures, CategoryUsage,
		CategoryCareInstructions, CategorySpecifications:
		return true
	}
	return false
}

// KnowledgeEntry is one indexed fact about one product.
// Created by an external seeding/admin process; content edits require re-embedding.
type KnowledgeEntry struct {
	ID           string
	ProductID    string
	ProductName  string
	Title        string
	Content      string
	Category     Category
	EmbeddingRef string // Reference into the vector index; empty until embedded.
}

// DocumentMetadata is the metadata copied into the vector index alongside
// each embedded knowledge entry.
type DocumentMetadata struct {
	KnowledgeID string
	ProductID   string
	ProductName string
	Title       string
	Category    Category
}

// ContextDocument is one retrieved grounding document with its ranking distance.
// Lower distance means more similar.
type ContextDocument struct {
	Content  string
	Metadata DocumentMetadata
	Distance float64
}

// QueryResult is the full outcome of processing one user query.
// This shape is the external contract exposed to the web layer.
type QueryResult struct {
	Response    string
	ContextUsed []ContextDocument
	Query       string
	ModelUsed   string
	Suggestions []string
}

// ChatExchange is one query/response pair keyed by session.
// A session holds only its latest exchange: recording an existing session
// overwrites the previous query, response, context and model fields.
type ChatExchange struct {
	SessionID  string
	UserID     string
	Query      string
	Response   string
	ContextIDs []string
	Model      string
	Timestamp  time.Time
}
