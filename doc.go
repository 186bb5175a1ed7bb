// Package logjson extracts structured JSON data embedded in log records and
// prepares it for merging into a record's property tree.
//
// A record qualifies when, after leading whitespace, it starts with a cookie
// (by default the CEE marker "@cee:") followed by exactly one JSON object.
// The object can optionally have a nested field resolved, for instance a
// "log" field whose value is itself JSON re-encoded as a string, and can be
// compacted by dropping empty strings, arrays, objects and nulls.
//
// # Basic Usage
//
//	engine, err := logjson.NewEngine(logjson.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	worker := engine.NewWorker() // one per goroutine
//	result := worker.Extract([]byte(`@cee: {"event":"login","user":"alice"}`))
//	if result.Structured() {
//		fmt.Println(result.Object) // {"event":"login","user":"alice"}
//	}
//
// # Nested fields
//
//	opts := logjson.DefaultOptions()
//	opts.Cookie = ""
//	opts.MessageField = "log"
//	opts.AltMessageField = "original_raw_json"
//	opts.Compact = true
//
// With these options {"log":"{\"message\":\"hi\"}","stream":"stdout"} yields
// {"stream":"stdout","message":"hi","original_raw_json":"{\"message\":\"hi\"}"}.
//
// # Outcomes
//
// Extract never returns an error. Input that is not structured data yields a
// Result with a Reason (no cookie, parse failure, empty after compaction) and
// an Err describing it; the caller decides whether to log it or to attach
// Result.Remainder as a fallback. Parse failures are *ParseError values that
// match ErrTruncated, ErrSyntax, ErrTrailingData, ErrNotAnObject or
// ErrDepthLimit with errors.Is.
//
// # Building blocks
//
// The pipeline stages are exported for direct use: DetectCookie, Parse with a
// reusable ParserState, ResolveNestedField, Merge, Compact and the canonical
// encoder (AppendValue, Value.String).
package logjson
