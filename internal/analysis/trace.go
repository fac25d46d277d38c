package analysis

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'analysis'
func tracer() tracing.Trace {
	return tracing.Select("analysis")
}
