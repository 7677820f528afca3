// internal/common/netutil/mask.go
package netutil

import "strings"

// MaskAddress hides the middle octets of a host:port address so server
// addresses can appear in logs without disclosing the full IP. Dotted
// IPv4 hosts keep their first and last octet; anything else is fully
// masked. When hide is false the address is returned untouched.
func MaskAddress(address string, hide bool) string {
	if !hide {
		return address
	}

	host := address
	port := ""
	if i := strings.LastIndex(address, ":"); i >= 0 {
		host = address[:i]
		port = address[i+1:]
	}

	parts := strings.Split(host, ".")
	masked := "***.***.***"
	if len(parts) == 4 {
		masked = parts[0] + ".***.***." + parts[3]
	}

	if port != "" {
		return masked + ":****"
	}
	return masked
}
