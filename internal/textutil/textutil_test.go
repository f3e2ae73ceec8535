package textutil

import (
	"reflect"
	"testing"
)

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"Citrus", "floral", "citrus", "Berry"})
	want := []string{"Citrus", "floral", "Berry"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe: expected %v, got %v", want, got)
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); got != nil {
		t.Errorf("Dedupe(nil): expected nil, got %v", got)
	}
	if got := Dedupe([]string{"  ", ""}); got != nil {
		t.Errorf("Dedupe(blank): expected nil, got %v", got)
	}
}

func TestSplitList(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"blackberry, cocoa", []string{"blackberry", "cocoa"}},
		{"peach and apricot", []string{"peach", "apricot"}},
		{"honey with jasmine", []string{"honey", "jasmine"}},
		{"plum, fig and molasses.", []string{"plum", "fig", "molasses"}},
		{"", nil},
	}

	for _, tc := range testCases {
		if got := SplitList(tc.input); !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("SplitList(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}
