package constants

// PageStatus records how a page's text was acquired.
type PageStatus string

// Stable values (exported as-is to XLSX/JSON and the store).
const (
	PageStatusProcessed    PageStatus = "PROCESSED"     // native text layer was usable
	PageStatusOCRProcessed PageStatus = "OCR_PROCESSED" // text layer too short, OCR fallback ran
)

// Acquisition methods reported in InvoiceRecord.Source.
const (
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodImageOCR = "image-ocr"
	MethodText     = "text"
	MethodWordDump = "word-dump"
)
