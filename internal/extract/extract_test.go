package extract

import "testing"

func TestExtract_Empty(t *testing.T) {
	body, important := Extract(nil)
	if body != "" || important != "" {
		t.Fatalf("Extract(nil) = (%q, %q), want (\"\", \"\")", body, important)
	}
}

func TestExtract_BodyAndImportant(t *testing.T) {
	body, important := Extract([]byte(`<html><head><title>foo</title></head><body><p>foo</p></body></html>`))
	if body != "foo foo" {
		t.Fatalf("body = %q, want %q", body, "foo foo")
	}
	if important != "foo" {
		t.Fatalf("important = %q, want %q", important, "foo")
	}
}

func TestExtract_MultipleImportantTags(t *testing.T) {
	_, important := Extract([]byte(`<h1>Alpha</h1><p>beta <strong>gamma</strong></p><b>delta</b>`))
	want := "Alpha gamma delta"
	if important != want {
		t.Fatalf("important = %q, want %q", important, want)
	}
}

func TestExtract_ToleratesMalformedHTML(t *testing.T) {
	body, _ := Extract([]byte(`<p>unterminated paragraph <b>bold text`))
	if body == "" {
		t.Fatalf("expected some recovered text from malformed HTML, got empty body")
	}
}

func TestExtract_SkipsScriptAndStyle(t *testing.T) {
	body, _ := Extract([]byte(`<p>visible</p><script>var hidden = 1;</script><style>.x{color:red}</style>`))
	if body != "visible" {
		t.Fatalf("body = %q, want %q (script/style content must be excluded)", body, "visible")
	}
}

func TestExtractTiered_SeparatesTitleFromBoldHeading(t *testing.T) {
	body, title, boldHeading := ExtractTiered([]byte(`<title>foo</title><h1>bar</h1><p>foo</p>`))
	if body != "foo bar foo" {
		t.Fatalf("body = %q, want %q", body, "foo bar foo")
	}
	if title != "foo" {
		t.Fatalf("title = %q, want %q", title, "foo")
	}
	if boldHeading != "bar" {
		t.Fatalf("boldHeading = %q, want %q", boldHeading, "bar")
	}
}

func TestExtractTiered_Empty(t *testing.T) {
	body, title, boldHeading := ExtractTiered(nil)
	if body != "" || title != "" || boldHeading != "" {
		t.Fatalf("ExtractTiered(nil) = (%q, %q, %q), want all empty", body, title, boldHeading)
	}
}
