package models

import "time"

type Document struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	FileKey    string    `json:"file"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Metadata is stored alongside every index entry. Content holds the
// truncated preview, not the full text.
type Metadata struct {
	Content    string `json:"content"`
	FileName   string `json:"file_name"`
	WordCount  int    `json:"word_count"`
	UploadDate string `json:"upload_date"`
}

type IndexEntry struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// IndexMatch is a raw nearest-neighbour hit as returned by the vector index.
// Score is cosine similarity, higher is closer.
type IndexMatch struct {
	ID       string
	Score    float64
	Metadata Metadata
}

type SearchResult struct {
	ID             string  `json:"id"`
	Score          float64 `json:"score"`
	ContentPreview string  `json:"content_preview"`
	FileName       string  `json:"file_name"`
}

type UploadResult struct {
	Document
	WordCount      int    `json:"word_count"`
	ContentPreview string `json:"content_preview"`
}
