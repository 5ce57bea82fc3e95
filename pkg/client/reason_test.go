package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescapeDoubled(t *testing.T) {
	tests := map[string]string{
		"plain":             "plain",
		`a\\b`:              `a\b`,
		`quote \'x\'`:       `quote 'x'`,
		`unicode é`:    "unicode é",
		`dangling \`:        `dangling \`,
		`unknown \q escape`: `unknown \q escape`,
		"naïve \\n":         "naïve \n",
	}
	for in, want := range tests {
		assert.Equal(t, want, unescapeDoubled(in), in)
	}
}
