package domain

import "testing"

func TestMemberDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		member   Member
		expected string
	}{
		{"username", Member{Username: "jisoo", FirstName: "Jisoo"}, "@jisoo"},
		{"first and last", Member{FirstName: "Jisoo", LastName: "Kim"}, "Jisoo Kim"},
		{"first only", Member{FirstName: "Jisoo"}, "Jisoo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.member.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}
