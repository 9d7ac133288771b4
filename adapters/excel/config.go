package excel

// CoercionMode controls what happens when a cell does not match its column type
type CoercionMode string

const (
	// ModeStrict skips the whole row and records an issue
	ModeStrict CoercionMode = "strict"
	// ModeLenient demotes the column to string and keeps every row
	ModeLenient CoercionMode = "lenient"
)

// ReaderConfig holds configuration for spreadsheet parsing
type ReaderConfig struct {
	CSVMode  CoercionMode `json:"csv_mode"`
	XLSXMode CoercionMode `json:"xlsx_mode"`
	MaxRows  int          `json:"max_rows"` // 0 means unlimited
	Sheet    string       `json:"sheet"`    // empty means the first sheet
}

// DefaultReaderConfig returns the defaults used by the web UI and the CLI
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		CSVMode:  ModeStrict,
		XLSXMode: ModeLenient,
	}
}
