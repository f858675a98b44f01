package app

import "testing"

func TestAnswerMatches(t *testing.T) {
	cases := []struct {
		answer, correct string
		want            bool
	}{
		{"Newton", "newton", true},
		{"  newton \n", "Newton", true},
		{"leibniz", "newton", false},
		{"", "newton", false},
	}
	for _, tc := range cases {
		if got := answerMatches(tc.answer, tc.correct); got != tc.want {
			t.Fatalf("answerMatches(%q, %q) = %v, want %v", tc.answer, tc.correct, got, tc.want)
		}
	}
}
