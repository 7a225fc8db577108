package mdns //nolint:testpackage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPort(t *testing.T) {
	tests := []struct {
		addr     string
		expected int
		ok       bool
	}{
		{":8001", 8001, true},
		{"127.0.0.1:80", 80, true},
		{"[::1]:443", 443, true},
		{":0", 0, false},
		{":http", 0, false},
		{"8001", 0, false},
	}

	for _, test := range tests {
		port, err := Port(test.addr)
		if !test.ok {
			require.Error(t, err, "addr: %q", test.addr)

			continue
		}

		require.NoError(t, err, "addr: %q", test.addr)
		assert.Equal(t, test.expected, port)
	}
}

func TestTxtRecords(t *testing.T) {
	assert.Equal(t, []string{"path=/", "api=/api/devices", "version=dev"}, txtRecords("dev"))
}
