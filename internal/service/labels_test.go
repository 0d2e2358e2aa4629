//go:build unit

package service

import (
	"reflect"
	"testing"
)

func TestParseLabels(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "HTML5,JavaScript", []string{"HTML5", "JavaScript"}},
		{"spaces", " Go , SQL ", []string{"Go", "SQL"}},
		{"trailing comma", "Go,", []string{"Go"}},
		{"double comma", "Go,,SQL", []string{"Go", "SQL"}},
		{"duplicates keep first position", "SQL,Go,SQL", []string{"SQL", "Go"}},
		{"empty", "", []string{}},
		{"only commas", " , ,", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseLabels(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseLabels(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}
