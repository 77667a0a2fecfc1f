// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package prtool

import "testing"

func TestParsePRNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"#42", 42, true},
		{"42", 42, true},
		{"branch-name", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePRNumber(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParsePRNumber(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
