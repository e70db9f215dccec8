package diff_test

import (
	"testing"

	"github.com/phabreview/phabreview/internal/diff"
)

const snippetDiff = `diff --git a/foo.py b/foo.py
@@ -1,3 +1,3 @@
 a
-b
+c
 d
`

func TestExtractSnippet_SingleLineWithContext(t *testing.T) {
	got, ok := diff.ExtractSnippet(snippetDiff, "foo.py", "2", 1)
	if !ok {
		t.Fatal("expected a snippet")
	}

	want := "  1: a\n> 2: c\n  3: d"
	if got != want {
		t.Errorf("snippet = %q, want %q", got, want)
	}
}

func TestExtractSnippet_ZeroContext(t *testing.T) {
	got, ok := diff.ExtractSnippet(snippetDiff, "foo.py", "2", 0)
	if !ok {
		t.Fatal("expected a snippet")
	}

	if got != "> 2: c" {
		t.Errorf("snippet = %q, want %q", got, "> 2: c")
	}
}

func TestExtractSnippet_Range(t *testing.T) {
	raw := `diff --git a/list.txt b/list.txt
@@ -40,6 +40,6 @@
 forty
-forty-one old
+forty-one
 forty-two
 forty-three
 forty-four
 forty-five
`

	got, ok := diff.ExtractSnippet(raw, "list.txt", "41-43", 1)
	if !ok {
		t.Fatal("expected a snippet")
	}

	want := "  40: forty\n> 41: forty-one\n> 42: forty-two\n> 43: forty-three\n  44: forty-four"
	if got != want {
		t.Errorf("snippet = %q, want %q", got, want)
	}
}

func TestExtractSnippet_RemovalsInvisible(t *testing.T) {
	got, ok := diff.ExtractSnippet(snippetDiff, "foo.py", "1-3", 0)
	if !ok {
		t.Fatal("expected a snippet")
	}

	// The removed "b" never appears and does not shift numbering.
	want := "> 1: a\n> 2: c\n> 3: d"
	if got != want {
		t.Errorf("snippet = %q, want %q", got, want)
	}
}

func TestExtractSnippet_SecondFileTargeted(t *testing.T) {
	raw := `diff --git a/first.go b/first.go
@@ -1,2 +1,3 @@
 aa
+bb
 cc
diff --git a/second.go b/second.go
@@ -7,2 +7,3 @@
 xx
+yy
 zz
`

	got, ok := diff.ExtractSnippet(raw, "second.go", "8", 1)
	if !ok {
		t.Fatal("expected a snippet")
	}

	want := "  7: xx\n> 8: yy\n  9: zz"
	if got != want {
		t.Errorf("snippet = %q, want %q", got, want)
	}
}

func TestExtractSnippet_UnknownPath(t *testing.T) {
	if snippet, ok := diff.ExtractSnippet(snippetDiff, "missing.py", "2", 1); ok {
		t.Errorf("expected no snippet for unknown path, got %q", snippet)
	}
}

func TestExtractSnippet_BadLineRef(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"not a number", "abc"},
		{"empty", ""},
		{"half range", "5-"},
		{"bad range start", "x-2"},
		{"bad range end", "2-x"},
		{"triple range", "1-2-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if snippet, ok := diff.ExtractSnippet(snippetDiff, "foo.py", tt.ref, 1); ok {
				t.Errorf("ExtractSnippet(ref=%q) = %q, want no snippet", tt.ref, snippet)
			}
		})
	}
}

func TestExtractSnippet_ReversedRange(t *testing.T) {
	if snippet, ok := diff.ExtractSnippet(snippetDiff, "foo.py", "5-3", 1); ok {
		t.Errorf("reversed range should yield no snippet, got %q", snippet)
	}
}

func TestExtractSnippet_StaleLineNumber(t *testing.T) {
	if snippet, ok := diff.ExtractSnippet(snippetDiff, "foo.py", "400", 1); ok {
		t.Errorf("out-of-window line should yield no snippet, got %q", snippet)
	}
}

func TestExtractSnippet_DeletedFileHasNoPostImage(t *testing.T) {
	raw := `diff --git a/gone.py b//dev/null
@@ -1,2 +0,0 @@
-first
-second
`

	if snippet, ok := diff.ExtractSnippet(raw, "gone.py", "1", 1); ok {
		t.Errorf("deleted file has no post-image lines, got %q", snippet)
	}
}

func TestExtractSnippet_ContentKeptVerbatim(t *testing.T) {
	raw := `diff --git a/ws.py b/ws.py
@@ -1,1 +1,2 @@
 def f():
+    return  1
`

	got, ok := diff.ExtractSnippet(raw, "ws.py", "2", 0)
	if !ok {
		t.Fatal("expected a snippet")
	}

	// Indentation and trailing spaces survive, unlike summary content.
	want := "> 2:     return  1  "
	if got != want {
		t.Errorf("snippet = %q, want %q", got, want)
	}
}

func TestExtractSnippet_MultipleHunksAscending(t *testing.T) {
	raw := `diff --git a/multi.go b/multi.go
@@ -1,2 +1,3 @@
 one
+two
 three
@@ -20,2 +21,3 @@
 twentyone
+twentytwo
 twentythree
`

	got, ok := diff.ExtractSnippet(raw, "multi.go", "2-22", 0)
	if !ok {
		t.Fatal("expected a snippet")
	}

	want := "> 2: two\n> 3: three\n> 21: twentyone\n> 22: twentytwo"
	if got != want {
		t.Errorf("snippet = %q, want %q", got, want)
	}
}
