package wpa

import (
	"bufio"
	"encoding/hex"
	"io"
	"net"
	"os"
	"strings"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wifid/driver"
)

const routeFile = "/proc/net/route"

// defaultGateway reads the IPv4 default gateway of ifname from the kernel
// routing table.
func defaultGateway(ifname string) (net.IP, error) {
	f, err := os.Open(routeFile)
	if err != nil {
		return nil, errors.Errorf("could not open %v: %v", routeFile, err)
	}
	defer f.Close()

	return parseDefaultGateway(f, ifname)
}

func parseDefaultGateway(r io.Reader, ifname string) (net.IP, error) {
	scanner := bufio.NewScanner(r)

	// header
	scanner.Scan()

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[0] != ifname || fields[1] != "00000000" {
			continue
		}

		gw, err := hex.DecodeString(fields[2])
		if err != nil || len(gw) != 4 {
			return nil, errors.Errorf("invalid gateway %v", fields[2])
		}

		// little endian
		return net.IPv4(gw[3], gw[2], gw[1], gw[0]).To4(), nil
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("could not read routes: %v", err)
	}

	return nil, errors.Errorf("no default route on %v", ifname)
}

// interfaceIPInfo returns the first IPv4 address of ifname.
func interfaceIPInfo(ifname string) (net.IP, net.IP, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, nil, errors.Errorf("could not find interface %v: %v", ifname, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, nil, errors.Errorf("could not get addresses of %v: %v", ifname, err)
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}

		if ip := ipNet.IP.To4(); ip != nil {
			mask := net.IP(ipNet.Mask)
			if len(ipNet.Mask) == net.IPv6len {
				mask = mask[12:]
			}

			return ip, mask, nil
		}
	}

	return nil, nil, errors.Errorf("no address on %v", ifname)
}

// readIPInfo returns the address, netmask and default gateway of ifname.
// A missing default route leaves the gateway unset.
func readIPInfo(ifname string) (*driver.IPInfo, error) {
	ip, netmask, err := interfaceIPInfo(ifname)
	if err != nil {
		return nil, err
	}

	gw, _ := defaultGateway(ifname)

	return &driver.IPInfo{
		IP:      ip,
		Netmask: netmask,
		GW:      gw,
	}, nil
}
