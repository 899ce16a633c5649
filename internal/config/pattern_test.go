package config

import "testing"

// TestCompilePattern tests pattern literal compilation.
func TestCompilePattern(t *testing.T) {
	t.Parallel()

	t.Run("bare expression", func(t *testing.T) {
		t.Parallel()

		p, err := CompilePattern(`^class\s`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.MatchString("class Foo") {
			t.Error("expected match for 'class Foo'")
		}
		if p.MatchString("Class Foo") {
			t.Error("bare expression should be case-sensitive")
		}
	})

	t.Run("delimited with i flag", func(t *testing.T) {
		t.Parallel()

		p, err := CompilePattern(`/^class\s/i`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.MatchString("CLASS Foo") {
			t.Error("expected case-insensitive match")
		}
	})

	t.Run("g flag is ignored", func(t *testing.T) {
		t.Parallel()

		p, err := CompilePattern(`/foo/gi`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.MatchString("FOO") {
			t.Error("expected match with i flag despite g")
		}
	})

	t.Run("unsupported flag", func(t *testing.T) {
		t.Parallel()

		if _, err := CompilePattern(`/foo/x`); err == nil {
			t.Error("expected error for unsupported flag")
		}
	})

	t.Run("invalid expression", func(t *testing.T) {
		t.Parallel()

		if _, err := CompilePattern(`([unclosed`); err != nil {
			return
		}
		t.Error("expected compile error")
	})

	t.Run("slash inside body", func(t *testing.T) {
		t.Parallel()

		// Last slash delimits; the body may contain earlier slashes.
		p, err := CompilePattern(`/a/b/i`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.MatchString("A/B") {
			t.Error("expected case-insensitive match for a/b")
		}
	})
}

// TestPatternCaptureGroup tests capture-group extraction.
func TestPatternCaptureGroup(t *testing.T) {
	t.Parallel()

	p := MustCompilePattern(`^(\w+)\(`)

	got, ok := p.CaptureGroup("fetch(url)")
	if !ok || got != "fetch" {
		t.Errorf("CaptureGroup = %q, %v; want \"fetch\", true", got, ok)
	}

	if _, ok := p.CaptureGroup("no parens"); ok {
		t.Error("expected no match")
	}
}

// TestPatternRoundTrip verifies the original literal survives JSON
// marshalling, as used by checkpoint embedding.
func TestPatternRoundTrip(t *testing.T) {
	t.Parallel()

	p := MustCompilePattern(`/highlight-(\w+)/i`)

	data, err := p.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"/highlight-(\\w+)/i"` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var restored Pattern
	if err := restored.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got, ok := restored.CaptureGroup("HIGHLIGHT-python"); !ok || got != "python" {
		t.Errorf("restored pattern CaptureGroup = %q, %v", got, ok)
	}
	if restored.String() != p.String() {
		t.Errorf("literal changed: %q != %q", restored.String(), p.String())
	}
}
