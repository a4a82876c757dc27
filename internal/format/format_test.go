package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElapsedTime(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{3661, "01:01:01"},
		{86399, "23:59:59"},
		{360000, "100:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ElapsedTime(tt.in), "ElapsedTime(%d)", tt.in)
	}
}

func TestKiB(t *testing.T) {
	assert.Equal(t, "512K", KiB(512))
	assert.Equal(t, "1.5M", KiB(1536))
	assert.Equal(t, "2.0G", KiB(2<<20))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, " 87.5%", Percent(0.875))
	assert.Equal(t, "100.0%", Percent(1))
}
