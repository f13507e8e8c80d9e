package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeFor(t *testing.T) {
	cases := []struct {
		avg  float64
		want string
	}{
		{100, "A"},
		{80, "A"},
		{79.99, "B"},
		{70, "B"},
		{69.5, "C"},
		{60, "C"},
		{59.9, "D"},
		{50, "D"},
		{49.99, "E"},
		{0, "E"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GradeFor(tc.avg), "avg %v", tc.avg)
	}
}

func TestRemarkFor(t *testing.T) {
	assert.Equal(t, "Excellent work!", RemarkFor("A"))
	assert.Equal(t, "Keep working hard!", RemarkFor("B"))
	assert.Equal(t, "Keep working hard!", RemarkFor("E"))
}

func TestGeneralRemarkForBandsMatchGrades(t *testing.T) {
	cases := []struct {
		avg  float64
		want string
	}{
		{85, "Outstanding performance overall"},
		{76, "Very good work overall"},
		{70, "Very good work overall"},
		{65, "Good effort, keep improving"},
		{52, "Fair performance, needs more focus"},
		{31, "Needs significant improvement"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GeneralRemarkFor(tc.avg), "avg %v", tc.avg)
	}
}
