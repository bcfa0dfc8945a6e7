package domain

// Document is the raw text extracted from a single source file.
// Documents are transient: they exist between loading and chunking.
type Document struct {
	Text   string
	Source string
}

// Chunk is a bounded, overlapping segment of a Document. Chunks are the
// unit of embedding and retrieval.
type Chunk struct {
	Text    string
	Source  string
	Ordinal int
}

// RetrievedChunk is a single nearest-neighbour hit for a query vector.
type RetrievedChunk struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Answer is the generated reply together with the deduplicated basenames
// of the source files the retrieved context came from.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []string `json:"sources"`
}

// IngestStats summarizes a completed ingestion run.
type IngestStats struct {
	Documents int
	Chunks    int
}
