package pattern_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/yaklabco/wrapfix/pkg/pattern"
)

const serializeTemplate = "var {subject} = new {type:type} {init:block};{gap:gap}{@call}" +
	"var {result} = {receiver:qualifier}Serialize({subject}{rest:tail});"

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
	}{
		{name: "empty", source: "   "},
		{name: "unterminated placeholder", source: "var {x"},
		{name: "unknown kind", source: "var {x:bogus}"},
		{name: "empty name", source: "var {}"},
		{name: "invalid name", source: "var {1x}"},
		{name: "unmatched close brace", source: "x } y"},
		{name: "leading gap", source: "{g:gap}x"},
		{name: "leading mark", source: "{@m}x"},
		{name: "trailing gap", source: "x {g:gap}"},
		{name: "adjacent gaps", source: "x {a:gap} {b:gap} y"},
		{name: "repeated typed slot", source: "x {a:type} {a}"},
		{name: "duplicate mark", source: "x {@m} y {@m} z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := pattern.Compile(tt.name, tt.source, pattern.Options{})
			if err == nil {
				t.Fatalf("Compile(%q) succeeded, want error", tt.source)
			}
			var syntaxErr *pattern.SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("error %v is not a *SyntaxError", err)
			}
			if syntaxErr.Template != tt.name {
				t.Errorf("Template = %q, want %q", syntaxErr.Template, tt.name)
			}
		})
	}
}

func TestCompileMetadata(t *testing.T) {
	t.Parallel()

	tmpl := pattern.MustCompile("serialize", serializeTemplate, pattern.Options{})

	if got := tmpl.Name(); got != "serialize" {
		t.Errorf("Name() = %q", got)
	}
	if got := tmpl.MaxGap(); got != pattern.DefaultMaxGap {
		t.Errorf("MaxGap() = %d, want %d", got, pattern.DefaultMaxGap)
	}
	wantSlots := []string{"subject", "type", "init", "gap", "result", "receiver", "rest"}
	if got := tmpl.Slots(); strings.Join(got, ",") != strings.Join(wantSlots, ",") {
		t.Errorf("Slots() = %v, want %v", got, wantSlots)
	}
	if got := tmpl.Marks(); len(got) != 1 || got[0] != "call" {
		t.Errorf("Marks() = %v, want [call]", got)
	}
	if !tmpl.HasBackref("subject") {
		t.Error("HasBackref(subject) = false, want true")
	}
	if tmpl.HasBackref("result") {
		t.Error("HasBackref(result) = true, want false")
	}
}

func TestFindAllCaptures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		text     string
		want     []map[string]string
	}{
		{
			name:     "object initializer",
			template: "var {subject} = new {type:type} {init:block};",
			text:     "var expectedResponse = new Widget { Id = 1 };",
			want: []map[string]string{
				{"subject": "expectedResponse", "type": "Widget", "init": "{ Id = 1 }"},
			},
		},
		{
			name:     "generic type",
			template: "new {type:type} {init:block}",
			text:     "new PagedResponse<Widget> { Items = new List<Widget>() }",
			want: []map[string]string{
				{"type": "PagedResponse<Widget>", "init": "{ Items = new List<Widget>() }"},
			},
		},
		{
			name:     "type with spaced arguments",
			template: "new {type:type} {init:block}",
			text:     "new Dictionary<string, int> { }",
			want: []map[string]string{
				{"type": "Dictionary<string, int>", "init": "{ }"},
			},
		},
		{
			name:     "constructor then initializer",
			template: "new {type:type} {init:block};",
			text:     "new Widget(1) { Name = \"a\" };",
			want: []map[string]string{
				{"type": "Widget", "init": "(1) { Name = \"a\" }"},
			},
		},
		{
			name:     "braces inside string literal",
			template: "new {type:type} {init:block};",
			text:     `new Widget { Name = "}" };`,
			want: []map[string]string{
				{"type": "Widget", "init": `{ Name = "}" }`},
			},
		},
		{
			name:     "qualifier and argument tail",
			template: "var {result} = {receiver:qualifier}Serialize({subject}{rest:tail});",
			text:     "var jsonResponse = JsonSerializer.Serialize(expectedResponse, _jsonOptions);",
			want: []map[string]string{
				{"result": "jsonResponse", "receiver": "JsonSerializer.", "subject": "expectedResponse", "rest": ", _jsonOptions"},
			},
		},
		{
			name:     "empty qualifier and tail",
			template: "var {result} = {receiver:qualifier}Serialize({subject}{rest:tail});",
			text:     "var json = Serialize(value);",
			want: []map[string]string{
				{"result": "json", "receiver": "", "subject": "value", "rest": ""},
			},
		},
		{
			name:     "nested call in tail",
			template: "Serialize({subject}{rest:tail});",
			text:     "Serialize(expected, Options(1, 2));",
			want: []map[string]string{
				{"subject": "expected", "rest": ", Options(1, 2)"},
			},
		},
		{
			name:     "literal braces",
			template: "{{{x}}}",
			text:     "{abc}",
			want:     []map[string]string{{"x": "abc"}},
		},
		{
			name:     "type slot skips keywords",
			template: "{t:type} {name} = 1;",
			text:     "var x = 1; int y = 1;",
			want:     []map[string]string{{"t": "int", "name": "y"}},
		},
		{
			name:     "literal respects word boundaries",
			template: "var {x} = 1;",
			text:     "somevar y = 1; varz = 1; var z = 1;",
			want:     []map[string]string{{"x": "z"}},
		},
		{
			name:     "no match",
			template: "var {x} = 1;",
			text:     "nothing to see here",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpl := pattern.MustCompile(tt.name, tt.template, pattern.Options{})
			matches := tmpl.FindAll(tt.text)
			if len(matches) != len(tt.want) {
				t.Fatalf("got %d matches, want %d", len(matches), len(tt.want))
			}
			for i, want := range tt.want {
				for name, text := range want {
					if got := matches[i].Text(name); got != text {
						t.Errorf("match %d: %s = %q, want %q", i, name, got, text)
					}
				}
			}
		})
	}
}

func TestSerializeTemplate(t *testing.T) {
	t.Parallel()

	text := "var expectedResponse = new Widget { Id = 1 };\n" +
		"var jsonResponse = Serialize(expectedResponse);"
	tmpl := pattern.MustCompile("serialize", serializeTemplate, pattern.Options{})

	matches := tmpl.FindAll(text)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]

	if m.Start != 0 || m.End != len(text) {
		t.Errorf("span = [%d,%d), want [0,%d)", m.Start, m.End, len(text))
	}
	if m.Template != "serialize" {
		t.Errorf("Template = %q", m.Template)
	}
	wantCall := strings.Index(text, "var jsonResponse")
	if got, ok := m.Marks["call"]; !ok || got != wantCall {
		t.Errorf("Marks[call] = %d (%v), want %d", got, ok, wantCall)
	}

	occ := m.OccurrencesOf("subject")
	if len(occ) != 2 {
		t.Fatalf("got %d subject occurrences, want 2", len(occ))
	}
	if occ[0].Start != 4 {
		t.Errorf("first occurrence at %d, want 4", occ[0].Start)
	}
	if got := text[occ[1].Start:occ[1].End]; got != "expectedResponse" {
		t.Errorf("second occurrence text = %q", got)
	}
	if occ[1].Start <= wantCall {
		t.Errorf("second occurrence at %d, want after call mark %d", occ[1].Start, wantCall)
	}
}

func TestGapStopsAtRedeclaration(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"var expectedResponse = new Widget { Id = 1 };",
		"Assert.NotNull(expectedResponse);",
		"var expectedResponse = new Gadget { Id = 2 };",
		"var jsonResponse = Serialize(expectedResponse);",
	}, "\n")
	tmpl := pattern.MustCompile("serialize", serializeTemplate, pattern.Options{})

	matches := tmpl.FindAll(text)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if got := matches[0].Text("type"); got != "Gadget" {
		t.Errorf("type = %q, want Gadget", got)
	}
	if want := strings.Index(text, "var expectedResponse = new Gadget"); matches[0].Start != want {
		t.Errorf("Start = %d, want %d", matches[0].Start, want)
	}
}

func TestGapStaysInBlock(t *testing.T) {
	t.Parallel()

	tmpl := pattern.MustCompile("pair", "open {x};{g:gap}close {x};", pattern.Options{})

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "same block", text: "{ open a; step(); close a; }", want: 1},
		{name: "nested block in between", text: "{ open a; if (ok) { step(); } close a; }", want: 1},
		{name: "close in nested block", text: "{ open a; if (ok) { close a; } }", want: 1},
		{name: "close in sibling block", text: "{ open a; }\n{ close a; }", want: 0},
		{name: "brace in string", text: `{ open a; log("}"); close a; }`, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := len(tmpl.FindAll(tt.text)); got != tt.want {
				t.Errorf("got %d matches, want %d", got, tt.want)
			}
		})
	}
}

func TestScannerSkipsCommentsAndLiterals(t *testing.T) {
	t.Parallel()

	tmpl := pattern.MustCompile("assign", "var {x} = 1;", pattern.Options{})
	text := strings.Join([]string{
		"// var a = 1;",
		"/* var b = 1; */",
		`s = "var c = 1;";`,
		`v = @"var d = 1;";`,
		"var e = 1;",
	}, "\n")

	var names []string
	for m := range tmpl.Scan(text).All() {
		names = append(names, m.Text("x"))
	}
	if got := strings.Join(names, ","); got != "e" {
		t.Errorf("matches = %q, want e", got)
	}
}

func TestGapIsBounded(t *testing.T) {
	t.Parallel()

	text := "begin a;" + strings.Repeat(".", 20) + "end a;"

	short := pattern.MustCompile("short", "begin {x};{g:gap}end {x};", pattern.Options{MaxGap: 8})
	if got := len(short.FindAll(text)); got != 0 {
		t.Errorf("MaxGap 8: got %d matches, want 0", got)
	}

	long := pattern.MustCompile("long", "begin {x};{g:gap}end {x};", pattern.Options{})
	if got := len(long.FindAll(text)); got != 1 {
		t.Errorf("default MaxGap: got %d matches, want 1", got)
	}
}

func TestOverlapFirstMatchWins(t *testing.T) {
	t.Parallel()

	tmpl := pattern.MustCompile("sum", "{a} + {b}", pattern.Options{})
	matches := tmpl.FindAll("x + y + z")

	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Text("a") != "x" || matches[0].Text("b") != "y" {
		t.Errorf("captures = %q,%q, want x,y", matches[0].Text("a"), matches[0].Text("b"))
	}
}

func TestMalformedOccurrenceIsSkipped(t *testing.T) {
	t.Parallel()

	tmpl := pattern.MustCompile("init", "new {type:type} {init:block};", pattern.Options{})
	matches := tmpl.FindAll("new Widget { Id = (1 };\nnew Gadget { Id = 2 };")

	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if got := matches[0].Text("type"); got != "Gadget" {
		t.Errorf("type = %q, want Gadget", got)
	}
}

func TestScannerIsSinglePass(t *testing.T) {
	t.Parallel()

	tmpl := pattern.MustCompile("assign", "var {x} = 1;", pattern.Options{})
	scanner := tmpl.Scan("var a = 1; var b = 1; var c = 1;")

	var names []string
	for m := range scanner.All() {
		names = append(names, m.Text("x"))
	}
	if got := strings.Join(names, ","); got != "a,b,c" {
		t.Fatalf("first pass = %q, want a,b,c", got)
	}

	for range scanner.All() {
		t.Fatal("exhausted scanner yielded a match")
	}
	if _, ok := scanner.Next(); ok {
		t.Fatal("Next() on exhausted scanner returned a match")
	}
}

func TestScannerAscendingOrder(t *testing.T) {
	t.Parallel()

	tmpl := pattern.MustCompile("assign", "var {x} = 1;", pattern.Options{})
	prev := -1
	for m := range tmpl.Scan("var a = 1;\nvar b = 1;\n\nvar c = 1;").All() {
		if m.Start <= prev {
			t.Fatalf("match at %d not after %d", m.Start, prev)
		}
		prev = m.Start
	}
}

func TestIdentifiers(t *testing.T) {
	t.Parallel()

	text := `x = xy + x; s = "x"; // x
y = x;`
	var got []int
	pattern.Identifiers(text, 0, len(text), "x", func(start, _ int) bool {
		got = append(got, start)
		return true
	})

	want := []int{0, 9, strings.LastIndex(text, "x")}
	if len(got) != len(want) {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("offset %d = %d, want %d", i, got[i], want[i])
		}
	}
}
