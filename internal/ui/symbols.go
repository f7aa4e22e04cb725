package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Operation completed successfully
	SymbolFail     = "✗" // Operation failed
	SymbolPending  = "○" // Not yet started
	SymbolComplete = "●" // Done (alternative to success)
	SymbolSkipped  = "⊘" // Skipped
)
