package pairs_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pluginform/pkg/pairs"
)

func TestSplitPair(t *testing.T) {
	cases := []struct {
		entry, delim string
		name, value  string
	}{
		{"X-Id:1", ":", "X-Id", "1"},
		{"Location:http://example.com:8080/x", ":", "Location", "http://example.com:8080/x"},
		{"X-Empty", ":", "X-Empty", ""},
		{"10.0.0.1:80 10", " ", "10.0.0.1:80", "10"},
		{"", ":", "", ""},
	}
	for _, tc := range cases {
		name, value := pairs.SplitPair(tc.entry, tc.delim)
		if name != tc.name || value != tc.value {
			t.Errorf("SplitPair(%q, %q) = (%q, %q), want (%q, %q)", tc.entry, tc.delim, name, value, tc.name, tc.value)
		}
	}
}

func TestListEditorNeverEmpty(t *testing.T) {
	editor := pairs.NewListEditor(":", nil, nil)
	if diff := cmp.Diff([]string{""}, editor.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if got := editor.Emit(); len(got) != 0 {
		t.Fatalf("expected blank row to be filtered, got %v", got)
	}
}

func TestListEditorRemovePreservesOrder(t *testing.T) {
	var emitted []string
	editor := pairs.NewListEditor(":", []string{"a:1", "b:2", "c:3"}, func(values []string) {
		emitted = values
	})

	got, err := editor.Remove(1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	want := []string{"a:1", "c:3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("remove mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, emitted); diff != "" {
		t.Fatalf("onChange mismatch (-want +got):\n%s", diff)
	}

	name, value, err := editor.Pair(1)
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	if name != "c" || value != "3" {
		t.Fatalf("expected row 1 to shift to c:3, got %s:%s", name, value)
	}
}

func TestListEditorRemoveLastRowKeepsBlank(t *testing.T) {
	editor := pairs.NewListEditor(":", []string{"a:1"}, nil)
	got, err := editor.Remove(0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty emit, got %v", got)
	}
	if editor.Len() != 1 {
		t.Fatalf("expected one blank row, got %d", editor.Len())
	}
}

func TestListEditorSetNameAndValue(t *testing.T) {
	editor := pairs.NewListEditor(":", []string{"Location:http://a:1/x"}, nil)

	got, err := editor.SetName(0, " Refresh ")
	if err != nil {
		t.Fatalf("set name: %v", err)
	}
	if diff := cmp.Diff([]string{"Refresh:http://a:1/x"}, got); diff != "" {
		t.Fatalf("set name mismatch (-want +got):\n%s", diff)
	}

	got, err = editor.SetValue(0, "5")
	if err != nil {
		t.Fatalf("set value: %v", err)
	}
	if diff := cmp.Diff([]string{"Refresh:5"}, got); diff != "" {
		t.Fatalf("set value mismatch (-want +got):\n%s", diff)
	}
}

func TestListEditorAppendIsNotEmitted(t *testing.T) {
	editor := pairs.NewListEditor(" ", []string{"127.0.0.1:3000 10"}, nil)
	editor.Append()
	if editor.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", editor.Len())
	}
	if diff := cmp.Diff([]string{"127.0.0.1:3000 10"}, editor.Emit()); diff != "" {
		t.Fatalf("emit mismatch (-want +got):\n%s", diff)
	}

	got, err := editor.SetName(1, "127.0.0.1:3001")
	if err != nil {
		t.Fatalf("set name: %v", err)
	}
	if diff := cmp.Diff([]string{"127.0.0.1:3000 10", "127.0.0.1:3001"}, got); diff != "" {
		t.Fatalf("emit mismatch (-want +got):\n%s", diff)
	}
}

func TestListEditorIndexOutOfRange(t *testing.T) {
	editor := pairs.NewListEditor(":", []string{"a:1"}, nil)
	if _, err := editor.SetValue(3, "x"); !errors.Is(err, pairs.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := editor.Remove(-1); !errors.Is(err, pairs.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}
