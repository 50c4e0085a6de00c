package entity

import (
	"time"

	"github.com/google/uuid"
)

// BatchError is a document-level failure recorded without aborting the batch.
type BatchError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// BatchResult is the outcome of one batch run.
type BatchResult struct {
	BatchID      uuid.UUID       `json:"batch_id"`
	ScannedAt    time.Time       `json:"scanned_at"`
	InvoiceCount int             `json:"invoice_count"`
	Invoices     []InvoiceRecord `json:"invoices"`
	Errors       []BatchError    `json:"errors"`
}

// Document is one input file of a batch.
type Document struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	ContentHash string `json:"content_hash,omitempty"` // hex sha256, empty when not fingerprinted
	Size        int64  `json:"size,omitempty"`
	// IngestError is set when the file could not be ingested. Such a document
	// is never read and becomes a batch error at its input position.
	IngestError string `json:"ingest_error,omitempty"`
}
