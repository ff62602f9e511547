package excel

// CaseData is a table of raw cases: one header row naming the columns, one row per case.
type CaseData struct {
	Headers []string
	Rows    [][]string
}
