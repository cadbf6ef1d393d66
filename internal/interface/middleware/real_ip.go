package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP sets the real client IP into Gin context (key: "real_ip").
// Priority: CF-Connecting-IP, X-Real-IP, left-most X-Forwarded-For, c.ClientIP().
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		candidates := []string{c.GetHeader("CF-Connecting-IP"), c.GetHeader("X-Real-IP")}
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			candidates = append(candidates, strings.SplitN(xff, ",", 2)[0])
		}
		for _, h := range candidates {
			if ip := net.ParseIP(strings.TrimSpace(h)); ip != nil {
				c.Set("real_ip", ip.String())
				c.Next()
				return
			}
		}
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}
