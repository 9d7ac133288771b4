package ports

import "contractbot/domain/dataset"

// SpreadsheetReader parses uploaded CSV and XLSX content into tables
type SpreadsheetReader interface {
	Read(upload dataset.Upload) (*dataset.Table, error)
	ReadFile(path string) (*dataset.Table, error)
}
