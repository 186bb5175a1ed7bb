package logjson

import (
	"errors"
	"fmt"
	"testing"
)

func newTestEngine(t *testing.T, configure func(*Options)) *Engine {
	t.Helper()
	opts := DefaultOptions()
	if configure != nil {
		configure(opts)
	}
	engine, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestExtractMatchesDirectParse(t *testing.T) {
	helper := NewTestHelper(t)
	worker := newTestEngine(t, nil).NewWorker()

	docs := []string{
		`{}`,
		`{"event":"login","user":"alice"}`,
		`{"a":[1,2,{"b":null}],"c":{"d":{"e":"f"}},"g":-1.5e3}`,
		`  {"spaced" : true}  `,
	}
	for _, doc := range docs {
		result := worker.Extract([]byte(DefaultCookie + doc))
		helper.AssertTrue(result.Structured(), "structured for %s", doc)
		helper.AssertTrue(result.ParseSucceeded())
		helper.AssertEqual(ReasonNone, result.Reason)
		helper.AssertTrue(result.Err == nil)
		helper.AssertEqual(DefaultContainer, result.Container)
		helper.AssertTrue(result.Object.Equal(helper.MustParse(doc)), "object for %s", doc)
	}
}

func TestExtractNoCookie(t *testing.T) {
	helper := NewTestHelper(t)
	worker := newTestEngine(t, nil).NewWorker()

	for _, input := range []string{
		`{"a":1}`,
		`  plain text log line`,
		`@CEE:{"a":1}`,
		``,
	} {
		result := worker.Extract([]byte(input))
		helper.AssertEqual(ReasonNoCookie, result.Reason, "input %q", input)
		helper.AssertErrorIs(result.Err, ErrNoCookie)
		helper.AssertFalse(result.Structured())
		helper.AssertFalse(result.ParseSucceeded())
		helper.AssertTrue(result.Object == nil)
	}

	result := worker.Extract([]byte("  \tplain text"))
	helper.AssertEqual("plain text", string(result.Remainder))
}

func TestExtractWithoutCookie(t *testing.T) {
	helper := NewTestHelper(t)
	worker := newTestEngine(t, func(o *Options) { o.Cookie = "" }).NewWorker()

	result := worker.Extract([]byte(` {"a":1}`))
	helper.AssertTrue(result.Structured())
	helper.AssertJSON(`{"a":1}`, result.Object)

	result = worker.Extract([]byte(`not json`))
	helper.AssertEqual(ReasonParseFailed, result.Reason)
	helper.AssertEqual("not json", string(result.Remainder))
}

func TestExtractParseFailures(t *testing.T) {
	helper := NewTestHelper(t)
	worker := newTestEngine(t, nil).NewWorker()

	tests := []struct {
		name   string
		input  string
		target error
	}{
		{"ArrayRoot", `@cee:[1,2,3]`, ErrNotAnObject},
		{"TrailingData", `@cee:{"a":1} garbage`, ErrTrailingData},
		{"Truncated", `@cee:{"a":`, ErrTruncated},
		{"Syntax", `@cee:{"a":1,,}`, ErrSyntax},
		{"NothingAfterCookie", `@cee:   `, ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := worker.Extract([]byte(tt.input))
			helper.AssertEqual(ReasonParseFailed, result.Reason)
			helper.AssertErrorIs(result.Err, tt.target)
			helper.AssertFalse(result.ParseSucceeded())
			helper.AssertTrue(IsUnstructured(result.Err))
			helper.AssertEqual(tt.input[len(DefaultCookie):], string(result.Remainder))
		})
	}
}

func TestExtractCompaction(t *testing.T) {
	helper := NewTestHelper(t)
	worker := newTestEngine(t, func(o *Options) { o.Compact = true }).NewWorker()

	result := worker.Extract([]byte(`@cee:{"a":"","b":{"c":[]},"d":1}`))
	helper.AssertTrue(result.Structured())
	helper.AssertJSON(`{"d":1}`, result.Object)

	result = worker.Extract([]byte(`@cee:{"a":""}`))
	helper.AssertEqual(ReasonCompactedToEmpty, result.Reason)
	helper.AssertErrorIs(result.Err, ErrCompactedToEmpty)
	helper.AssertFalse(result.Structured())
	helper.AssertTrue(result.ParseSucceeded(), "an empty document was still parsed")
	helper.AssertTrue(result.Object == nil)

	plain := newTestEngine(t, nil).NewWorker()
	result = plain.Extract([]byte(`@cee:{"a":""}`))
	helper.AssertTrue(result.Structured(), "no compaction unless enabled")
	helper.AssertJSON(`{"a":""}`, result.Object)
}

func TestExtractNestedField(t *testing.T) {
	helper := NewTestHelper(t)

	t.Run("RoundTrip", func(t *testing.T) {
		worker := newTestEngine(t, func(o *Options) {
			o.Cookie = ""
			o.MessageField = "log"
		}).NewWorker()

		result := worker.Extract([]byte(`{"log":"{\"message\":\"hi\"}","other":1}`))
		helper.AssertTrue(result.Structured())
		helper.AssertEqual(ResolvedString, result.Resolve.Action)
		helper.AssertTrue(result.Object.Equal(helper.MustParse(`{"message":"hi","other":1}`)))
	})

	t.Run("AltField", func(t *testing.T) {
		worker := newTestEngine(t, func(o *Options) {
			o.Cookie = ""
			o.MessageField = "log"
			o.AltMessageField = "orig"
		}).NewWorker()

		result := worker.Extract([]byte(`{"log":"{\"message\":\"hi\"}","other":1}`))
		helper.AssertTrue(result.Object.Equal(helper.MustParse(`{"message":"hi","other":1,"orig":"{\"message\":\"hi\"}"}`)))
	})

	t.Run("PlainStringPreserved", func(t *testing.T) {
		worker := newTestEngine(t, func(o *Options) {
			o.Cookie = ""
			o.MessageField = "log"
			o.AltMessageField = "orig"
		}).NewWorker()

		result := worker.Extract([]byte(`{"log":"just text","other":1}`))
		helper.AssertTrue(result.Structured())
		helper.AssertEqual(ResolveNoOp, result.Resolve.Action)
		helper.AssertJSON(`{"log":"just text","other":1}`, result.Object)
	})

	t.Run("AltIgnoredWithoutMessageField", func(t *testing.T) {
		engine := newTestEngine(t, func(o *Options) { o.AltMessageField = "orig" })
		helper.AssertEqual("", engine.Options().AltMessageField)
	})

	t.Run("AltFieldCompactedAway", func(t *testing.T) {
		worker := newTestEngine(t, func(o *Options) {
			o.Cookie = ""
			o.MessageField = "log"
			o.AltMessageField = "orig"
			o.Compact = true
		}).NewWorker()

		result := worker.Extract([]byte(`{"log":"{\"message\":\"\"}","x":null}`))
		helper.AssertEqual(ReasonCompactedToEmpty, result.Reason, "alt field does not keep the object alive")
		helper.AssertTrue(result.Object == nil)
	})

	t.Run("AltFieldSurvivesCompaction", func(t *testing.T) {
		worker := newTestEngine(t, func(o *Options) {
			o.Cookie = ""
			o.MessageField = "log"
			o.AltMessageField = "orig"
			o.Compact = true
		}).NewWorker()

		result := worker.Extract([]byte(`{"log":"{\"m\":\"hi\",\"e\":\"\"}","x":""}`))
		helper.AssertTrue(result.Structured())
		helper.AssertJSON(`{"m":"hi","orig":"{\"m\":\"hi\",\"e\":\"\"}"}`, result.Object)
	})
}

func TestExtractRepair(t *testing.T) {
	helper := NewTestHelper(t)

	strict := newTestEngine(t, nil).NewWorker()
	lenient := newTestEngine(t, func(o *Options) { o.Repair = true }).NewWorker()

	input := []byte(`@cee:{"a":1`)
	result := strict.Extract(input)
	helper.AssertErrorIs(result.Err, ErrTruncated)

	result = lenient.Extract(input)
	helper.AssertTrue(result.Structured())
	helper.AssertJSON(`{"a":1}`, result.Object)

	result = lenient.Extract([]byte(`@cee:{"a":1} trailing`))
	helper.AssertErrorIs(result.Err, ErrTrailingData, "trailing data is not repaired")
}

func TestExtractMaxDepth(t *testing.T) {
	helper := NewTestHelper(t)
	worker := newTestEngine(t, func(o *Options) { o.MaxDepth = 2 }).NewWorker()

	result := worker.Extract([]byte(`@cee:{"a":{"b":1}}`))
	helper.AssertTrue(result.Structured())

	result = worker.Extract([]byte(`@cee:{"a":{"b":{"c":1}}}`))
	helper.AssertEqual(ReasonParseFailed, result.Reason)
	helper.AssertErrorIs(result.Err, ErrDepthLimit)
}

func TestEngineContainer(t *testing.T) {
	helper := NewTestHelper(t)

	engine := newTestEngine(t, func(o *Options) { o.Container = "$.parsed" })
	result := engine.NewWorker().Extract([]byte(`@cee:{"a":1}`))
	helper.AssertEqual(".parsed", result.Container)

	_, err := NewEngine(&Options{Container: "parsed"})
	helper.AssertErrorIs(err, ErrInvalidContainer)
}

func TestEngineOptionsAreCopied(t *testing.T) {
	helper := NewTestHelper(t)

	opts := DefaultOptions()
	engine, err := NewEngine(opts)
	helper.AssertNoError(err)

	opts.Cookie = "changed"
	opts.Compact = true
	helper.AssertEqual(DefaultCookie, engine.Options().Cookie)
	helper.AssertFalse(engine.Options().Compact)

	engine, err = NewEngine(nil)
	helper.AssertNoError(err)
	helper.AssertEqual(DefaultCookie, engine.Options().Cookie)
}

func TestExtractNilState(t *testing.T) {
	helper := NewTestHelper(t)
	engine := newTestEngine(t, nil)

	result := engine.Extract(nil, []byte(`@cee:{"a":1}`))
	helper.AssertTrue(result.Structured())
}

func TestEngineConcurrentWorkers(t *testing.T) {
	helper := NewTestHelper(t)
	engine := newTestEngine(t, func(o *Options) {
		o.MessageField = "log"
		o.Compact = true
	})

	const workers = 8
	pool := make([]*Worker, workers)
	for i := range pool {
		pool[i] = engine.NewWorker()
	}

	tester := NewConcurrencyTester(t, workers, 200)
	tester.Run(func(workerID, iteration int) error {
		input := fmt.Sprintf(`@cee:{"worker":%d,"log":"{\"i\":%d,\"empty\":\"\"}"}`, workerID, iteration)
		result := pool[workerID].Extract([]byte(input))
		if !result.Structured() {
			return fmt.Errorf("unexpected reason %s: %v", result.Reason, result.Err)
		}
		expected := fmt.Sprintf(`{"worker":%d,"i":%d}`, workerID, iteration)
		if got := result.Object.String(); got != expected {
			return errors.New("got " + got + ", want " + expected)
		}
		return nil
	})
	helper.AssertEqual(workers, len(pool))
}

func TestExtractStateDescribesOuterDocument(t *testing.T) {
	helper := NewTestHelper(t)
	engine := newTestEngine(t, func(o *Options) {
		o.Cookie = ""
		o.MessageField = "log"
	})
	state := NewParserState()

	for _, input := range []string{
		`{"log":"{\"x\":1}","k":2}`,
		`{"log":"{\"x\":","k":2}`,
	} {
		result := engine.Extract(state, []byte(input))
		helper.AssertTrue(result.Structured(), "structured for %s", input)
		helper.AssertEqual(StatusComplete, state.Status(), "status for %s", input)
		helper.AssertEqual(len(input), state.Offset(), "offset for %s", input)
		helper.AssertTrue(state.Err() == nil, "error for %s", input)
	}
}
