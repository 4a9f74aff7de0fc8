package network

import (
	"fmt"
	"net"
)

// decodeString reads a fixed-size, possibly unterminated byte buffer. The
// first NUL ends the string; without one the whole buffer is used.
func decodeString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}

	return string(b)
}

// decodeSSID decodes an SSID buffer whose length is also reported separately.
func decodeSSID(ssid [32]byte, length uint8) string {
	n := int(length)
	if n == 0 || n > len(ssid) {
		n = len(ssid)
	}

	return decodeString(ssid[:n])
}

func formatMAC(mac [6]byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
}

func formatHardwareAddr(addr net.HardwareAddr) string {
	var mac [6]byte
	copy(mac[:], addr)
	return formatMAC(mac)
}

func formatIP(ip net.IP) string {
	v4 := ip.To4()
	if v4 == nil {
		return "0.0.0.0"
	}

	return v4.String()
}
