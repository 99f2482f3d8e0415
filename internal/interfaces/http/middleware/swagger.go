package middleware

import (
	"net"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopflux/storefront/internal/interfaces/http/dto"
)

// SwaggerConfig mirrors the [swagger] section of config.toml.
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	// AllowedIPs holds addresses or CIDR prefixes; empty admits everyone.
	AllowedIPs []string
}

// SwaggerProtection hides the docs with a 404 when they are disabled,
// then applies the address allow list, then the sign-in requirement.
func SwaggerProtection(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) gin.HandlerFunc {
	ips, nets := parseAllowList(cfg.AllowedIPs)
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		switch {
		case !cfg.Enabled:
			abort(c, dto.ErrCodeNotFound, "API documentation is not available")
			return
		case restricted && !isIPAllowed(clientIP(c), ips, nets):
			abort(c, dto.ErrCodeForbidden, "Access to API documentation is restricted")
			return
		}

		if cfg.RequireAuth && jwtMiddleware != nil {
			if jwtMiddleware(c); c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

// parseAllowList drops entries that are neither an address nor a prefix.
func parseAllowList(entries []string) ([]net.IP, []*net.IPNet) {
	var (
		ips  []net.IP
		nets []*net.IPNet
	)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			_, network, _ := net.ParseCIDR(prefix.Masked().String())
			nets = append(nets, network)
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			ips = append(ips, net.IP(addr.AsSlice()))
		}
	}
	return ips, nets
}

// clientIP honours the engine's trusted proxies and falls back to the
// socket peer.
func clientIP(c *gin.Context) net.IP {
	if ip := net.ParseIP(c.ClientIP()); ip != nil {
		return ip
	}
	if ap, err := netip.ParseAddrPort(c.Request.RemoteAddr); err == nil {
		return net.IP(ap.Addr().Unmap().AsSlice())
	}
	return net.ParseIP(c.Request.RemoteAddr)
}

func isIPAllowed(ip net.IP, ips []net.IP, nets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
