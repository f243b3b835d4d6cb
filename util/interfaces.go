package util

import (
	"errors"
	"net"
)

// IfaceAddr returns an IPv4 address assigned to the named interface, for use
// as a ping source address.
func IfaceAddr(ifaceName string) (addr string, err error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return
	}
	if !IsUp(iface) {
		err = errors.New("interface is down")
		return
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return
	}
	for _, a := range addrs {
		ip, _, err := net.ParseCIDR(a.String())
		if err != nil {
			continue
		}
		if ip.To4() == nil {
			continue
		}
		addr = ip.String()
		break
	}
	if addr == "" {
		err = errors.New("interface has no IPv4 addresses")
	}

	return
}

func IsUp(nif *net.Interface) bool { return nif.Flags&net.FlagUp != 0 }
