package diag

// Reporter decouples the lexer/parser/type-checker/codegen from how
// diagnostics are ultimately collected or displayed.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter forwards every diagnostic to an underlying Bag.
type BagReporter struct {
	Bag *Bag
}

// Report implements Reporter.
func (r *BagReporter) Report(d Diagnostic) {
	if r == nil || r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}
