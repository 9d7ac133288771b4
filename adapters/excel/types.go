package excel

// rawSheet is a header plus string records before typing. lines holds the
// 1-based source record number of each entry in records.
type rawSheet struct {
	sheet   string
	header  []string
	records [][]string
	lines   []int
}
