package wpa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routes = `Iface	Destination	Gateway 	Flags	RefCnt	Use	Metric	Mask		MTU	Window	IRTT
eth0	00000000	0100000A	0003	0	0	100	00000000	0	0	0
wlan0	0001A8C0	00000000	0001	0	0	600	00FFFFFF	0	0	0
wlan0	00000000	0101A8C0	0003	0	0	600	00000000	0	0	0
`

func TestParseDefaultGateway(t *testing.T) {
	gw, err := parseDefaultGateway(strings.NewReader(routes), "wlan0")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.1", gw.String())

	gw, err = parseDefaultGateway(strings.NewReader(routes), "eth0")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", gw.String())
}

func TestParseDefaultGatewayMissing(t *testing.T) {
	_, err := parseDefaultGateway(strings.NewReader(routes), "wlan1")
	assert.Error(t, err)

	_, err = parseDefaultGateway(strings.NewReader("Iface\tDestination\tGateway\nwlan0\t00000000\tzz\n"), "wlan0")
	assert.Error(t, err)
}
