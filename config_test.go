package logjson

import (
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	helper := NewTestHelper(t)

	opts := DefaultOptions()
	helper.AssertEqual("@cee:", opts.Cookie)
	helper.AssertEqual("!", opts.Container)
	helper.AssertFalse(opts.Compact)
	helper.AssertFalse(opts.Repair)
	helper.AssertEqual("", opts.MessageField)
	helper.AssertEqual(0, opts.MaxDepth)
	helper.AssertNoError(opts.Validate())
}

func TestNormalizeContainer(t *testing.T) {
	helper := NewTestHelper(t)

	tests := []struct {
		input    string
		expected string
		valid    bool
	}{
		{"", "!", true},
		{"!", "!", true},
		{"$!", "!", true},
		{"$!parsed", "!parsed", true},
		{"$!a!b", "!a!b", true},
		{".tmp", ".tmp", true},
		{"$.tmp", ".tmp", true},
		{"$/shared", "/shared", true},
		{"$", "", false},
		{"parsed", "", false},
		{"$parsed", "", false},
		{"$$!x", "", false},
	}

	for _, tt := range tests {
		got, err := NormalizeContainer(tt.input)
		if tt.valid {
			helper.AssertNoError(err, "container %q", tt.input)
			helper.AssertEqual(tt.expected, got, "container %q", tt.input)
			continue
		}
		helper.AssertErrorIs(err, ErrInvalidContainer, "container %q", tt.input)
		helper.AssertErrorContains(err, "must start with", "container %q", tt.input)
	}
}

func TestOptionsValidate(t *testing.T) {
	helper := NewTestHelper(t)

	t.Run("NegativeDepth", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxDepth = -1
		err := opts.Validate()
		helper.AssertErrorIs(err, ErrInvalidOptions)

		var extractErr *ExtractError
		helper.AssertTrue(asExtractError(err, &extractErr))
		helper.AssertEqual("max_depth", extractErr.Field)
	})

	t.Run("DepthClamped", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxDepth = MaxAllowedNestingDepth * 2
		helper.AssertNoError(opts.Validate())
		helper.AssertEqual(MaxAllowedNestingDepth, opts.MaxDepth)
	})

	t.Run("AltRequiresMessageField", func(t *testing.T) {
		opts := DefaultOptions()
		opts.AltMessageField = "orig"
		helper.AssertNoError(opts.Validate())
		helper.AssertEqual("", opts.AltMessageField)

		opts.MessageField = "log"
		opts.AltMessageField = "orig"
		helper.AssertNoError(opts.Validate())
		helper.AssertEqual("orig", opts.AltMessageField)
	})

	t.Run("Nil", func(t *testing.T) {
		var opts *Options
		helper.AssertErrorIs(opts.Validate(), ErrInvalidOptions)
	})
}

func TestOptionsClone(t *testing.T) {
	helper := NewTestHelper(t)

	opts := DefaultOptions()
	opts.MessageField = "log"
	clone := opts.Clone()
	clone.MessageField = "other"
	helper.AssertEqual("log", opts.MessageField)

	var nilOpts *Options
	helper.AssertEqual(*DefaultOptions(), *nilOpts.Clone())
}
