package scanning

// Scanner defines the interface for receipt transcription backends
type Scanner interface {
	// Transcribe sends a receipt image/PDF to the model and returns its raw
	// text reply. Replies are not guaranteed to be clean JSON; structured
	// extraction happens downstream.
	Transcribe(imageData []byte, contentType string, advanced bool) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
