package provider

import "net/netip"

// IsIP reports whether s is an IPv4 or IPv6 literal. Zoned addresses
// ("fe80::1%eth0") are not accepted.
func IsIP(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Zone() == ""
}

// IsIPv6 reports whether s is an IPv6 literal, including IPv4-mapped forms.
func IsIPv6(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Zone() == "" && addr.Is6()
}

// IsLoopback reports whether s is a loopback literal (127.0.0.0/8 or ::1).
func IsLoopback(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.IsLoopback()
}
