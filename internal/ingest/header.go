package ingest

// DetectHeader finds the real header row of a file whose leading junk rows are of
// unknown length. Offsets 0..maxOffset are tried in order and the first row that
// contains every required column wins.
func DetectHeader(records [][]string, required []string, maxOffset int) (int, bool) {
	for offset := 0; offset <= maxOffset && offset < len(records); offset++ {
		if hasColumns(records[offset], required) {
			return offset, true
		}
	}
	return 0, false
}

func hasColumns(row, required []string) bool {
	present := make(map[string]bool, len(row))
	for _, c := range row {
		present[c] = true
	}
	for _, name := range required {
		if !present[name] {
			return false
		}
	}
	return true
}

// columnIndex maps each column name to its first position in the header.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, c := range header {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return idx
}
