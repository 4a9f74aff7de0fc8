package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/the-lightning-land/wifid/driver"
)

func TestMockNetworks(t *testing.T) {
	networks := mockNetworks([]string{"cafe", "home:sec:ret"})

	assert.Equal(t, []driver.MockNetwork{
		{SSID: "cafe", Channel: 1, RSSI: -40, AuthMode: driver.AuthOpen},
		{SSID: "home", Password: "sec:ret", Channel: 2, RSSI: -45, AuthMode: driver.AuthWPA2PSK},
	}, networks)
}

func TestListenPort(t *testing.T) {
	assert.Equal(t, 9000, listenPort(":9000"))
	assert.Equal(t, 8080, listenPort("127.0.0.1:8080"))
	assert.Equal(t, 0, listenPort("localhost"))
}
