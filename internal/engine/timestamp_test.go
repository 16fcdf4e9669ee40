package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in     string
		want   Date
		wantOK bool
	}{
		{"2004-01-15 12:30", Date{2004, time.January, 15}, true},
		{"2004-1-5 3:00", Date{2004, time.January, 5}, true},
		{"2014-12-31 23:59:59", Date{2014, time.December, 31}, true},
		{"  2004-02-29 00:00 ", Date{2004, time.February, 29}, true},
		{"2005-02-29 00:00", Date{}, false},
		{"2004-13-01 00:00", Date{}, false},
		{"2004-01-15", Date{}, false},
		{"15/01/2004 12:30", Date{}, false},
		{"", Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateStringIsNotPadded(t *testing.T) {
	assert.Equal(t, "2004-1-5", Date{2004, time.January, 5}.String())
	assert.Equal(t, "2014-12-31", Date{2014, time.December, 31}.String())
}
