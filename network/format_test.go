package network

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeStringWithoutTerminator(t *testing.T) {
	var ssid [32]byte
	copy(ssid[:], bytes.Repeat([]byte("a"), 32))

	decoded := decodeString(ssid[:])

	assert.Len(t, decoded, 32)
	assert.Equal(t, string(bytes.Repeat([]byte("a"), 32)), decoded)
}

func TestDecodeStringStopsAtFirstNUL(t *testing.T) {
	for k := 0; k < 32; k++ {
		var ssid [32]byte
		copy(ssid[:], bytes.Repeat([]byte("b"), 32))
		ssid[k] = 0

		assert.Len(t, decodeString(ssid[:]), k)
	}
}

func TestDecodeSSIDRespectsLength(t *testing.T) {
	var ssid [32]byte
	copy(ssid[:], "homeXXXX")

	assert.Equal(t, "home", decodeSSID(ssid, 4))
	assert.Equal(t, "homeXXXX", decodeSSID(ssid, 0))
	assert.Equal(t, "homeXXXX", decodeSSID(ssid, 200))
}

func TestFormatMAC(t *testing.T) {
	assert.Equal(t, "0a:1b:2c:3d:4e:5f", formatMAC([6]byte{0x0a, 0x1b, 0x2c, 0x3d, 0x4e, 0x5f}))
	assert.Equal(t, "00:00:00:00:00:00", formatHardwareAddr(nil))
	assert.Equal(t, "de:ad:be:ef:00:01", formatHardwareAddr(net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}))
}

func TestFormatIP(t *testing.T) {
	assert.Equal(t, "192.168.1.5", formatIP(net.ParseIP("192.168.1.5")))
	assert.Equal(t, "10.0.0.1", formatIP(net.IPv4(10, 0, 0, 1).To4()))
	assert.Equal(t, "0.0.0.0", formatIP(nil))
}
