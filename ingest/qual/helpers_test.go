package qual

import "github.com/grailbio/ingest/ingest/diag"

// diagCollector records each warning's Code as a string, for simple
// assertions without reaching into ingest/diag's Collector type (which
// would require threading a second import path through every test).
type diagCollector struct {
	warnings []string
}

func (c *diagCollector) Warn(w diag.Warning) { c.warnings = append(c.warnings, w.Code.String()) }
func (c *diagCollector) Fatal(diag.Fatal)    {}
