package probe

import (
	"net"
	"net/netip"
	"regexp"
)

// InterfaceAddr is one address record of a local interface, CIDR looks like
// "2001:db8::1/64".
type InterfaceAddr struct {
	Name string
	CIDR string
}

type InterfaceSource interface {
	Addrs() ([]InterfaceAddr, error)
}

// SystemInterfaces reads the addresses of the host's interfaces.
type SystemInterfaces struct{}

func (SystemInterfaces) Addrs() ([]InterfaceAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []InterfaceAddr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			out = append(out, InterfaceAddr{Name: iface.Name, CIDR: addr.String()})
		}
	}
	return out, nil
}

// SelectIPv6 returns the first IPv6 address whose CIDR matches pattern,
// optionally limited to the interface named iface.
func SelectIPv6(addrs []InterfaceAddr, iface string, pattern *regexp.Regexp) string {
	for _, a := range addrs {
		if iface != "" && a.Name != iface {
			continue
		}
		prefix, err := netip.ParsePrefix(a.CIDR)
		if err != nil {
			continue
		}
		ip := prefix.Addr()
		if !ip.Is6() || ip.Is4In6() {
			continue
		}
		if pattern != nil && !pattern.MatchString(a.CIDR) {
			continue
		}
		return ip.String()
	}
	return ""
}
