package storage

import "time"

// CollectionRecord represents a named chunk collection in the database.
type CollectionRecord struct {
	Name       string
	VectorSize int
	CreatedAt  time.Time
}

// ChunkRecord represents an embedded chunk stored in a collection.
type ChunkRecord struct {
	Seq        int64          // Insertion sequence, assigned by the database
	ID         string         // UUID (same as the vector point ID)
	Collection string         // Foreign key to collections.name
	Text       string         // Chunk text content
	Embedding  []float32      // Fixed width per collection
	Metadata   map[string]any // Arbitrary payload (source, chunk_index, ...)
}

// InboxFileRecord remembers the version of an inbox file that was last ingested.
type InboxFileRecord struct {
	Path       string    // Slash-separated, relative to the inbox root
	Size       int64     // Bytes
	ModTime    time.Time // Stored with nanosecond precision
	Hash       string    // Hex SHA-256 of the content
	PointIDs   []string  // Vector points written for this version
	IngestedAt time.Time // Set by the database on every write
}
