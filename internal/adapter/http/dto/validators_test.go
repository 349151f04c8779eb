package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNgPhoneRegex(t *testing.T) {
	valid := []string{"08031234567", "07051234567", "09011234567", "08101234567"}
	for _, p := range valid {
		assert.True(t, ngPhoneRe.MatchString(p), p)
	}

	invalid := []string{"", "0803123456", "080312345678", "18031234567", "0603 123456", "+2348031234567"}
	for _, p := range invalid {
		assert.False(t, ngPhoneRe.MatchString(p), p)
	}
}

func TestSafeIDRegex(t *testing.T) {
	assert.True(t, safeStringRe.MatchString("req_01.A-b"))
	assert.False(t, safeStringRe.MatchString("req 01"))
	assert.False(t, safeStringRe.MatchString("req;drop"))
}

func TestSanitizeStruct(t *testing.T) {
	extra := "  <i>note</i> "
	s := struct {
		Name  string
		Extra *string
		Count int
	}{
		Name:  "  <b>hello</b>  ",
		Extra: &extra,
		Count: 3,
	}

	SanitizeStruct(&s)

	assert.Equal(t, "&lt;b&gt;hello&lt;/b&gt;", s.Name)
	assert.Equal(t, "&lt;i&gt;note&lt;/i&gt;", *s.Extra)
	assert.Equal(t, 3, s.Count)
}

func TestSanitizeStruct_NonPointer(t *testing.T) {
	s := struct{ Name string }{Name: " x "}
	SanitizeStruct(s) // no-op, must not panic
	assert.Equal(t, " x ", s.Name)
}
