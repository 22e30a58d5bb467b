package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"forum_go/internal/core/config"
	"forum_go/internal/core/logger"

	"github.com/gin-gonic/gin"
)

// ipChecker IP 检查器（白名单支持 CIDR 与单个 IP）
type ipChecker struct {
	allowNets []*net.IPNet
	denyNets  []*net.IPNet
	allowSet  map[string]bool
	denySet   map[string]bool
}

func newIPChecker(allowIPs, denyIPs []string) *ipChecker {
	c := &ipChecker{
		allowSet: make(map[string]bool),
		denySet:  make(map[string]bool),
	}

	for _, ip := range allowIPs {
		ip = strings.TrimSpace(ip)
		if ip == "" {
			continue
		}
		if _, cidr, err := net.ParseCIDR(ip); err == nil {
			c.allowNets = append(c.allowNets, cidr)
		} else {
			c.allowSet[ip] = true
		}
	}
	for _, ip := range denyIPs {
		ip = strings.TrimSpace(ip)
		if ip == "" {
			continue
		}
		if _, cidr, err := net.ParseCIDR(ip); err == nil {
			c.denyNets = append(c.denyNets, cidr)
		} else {
			c.denySet[ip] = true
		}
	}
	return c
}

// isLocalIP localhost、loopback 和 RFC1918 内网段
func isLocalIP(ipStr string) bool {
	if ipStr == "localhost" || ipStr == "127.0.0.1" || ipStr == "::1" {
		return true
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}

	if ipv4 := ip.To4(); ipv4 != nil {
		switch {
		case ipv4[0] == 10:
			return true
		case ipv4[0] == 192 && ipv4[1] == 168:
			return true
		case ipv4[0] == 172 && ipv4[1] >= 16 && ipv4[1] <= 31:
			return true
		case ipv4[0] == 127:
			return true
		}
	}
	return false
}

func (c *ipChecker) isAllowed(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	for _, cidr := range c.denyNets {
		if cidr.Contains(ip) {
			return false
		}
	}
	if c.denySet[ipStr] {
		return false
	}

	for _, cidr := range c.allowNets {
		if cidr.Contains(ip) {
			return true
		}
	}
	return c.allowSet[ipStr]
}

// MgtWhitelistMW 管理端 IP 白名单中间件
//
// 本地/内网 IP 直接放行；外网 IP 必须出现在 security.allow_ips 中。
func MgtWhitelistMW() gin.HandlerFunc {
	cfg := config.Get()
	checker := newIPChecker(cfg.Security.AllowIPs, cfg.Security.DenyIPs)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		// X-Real-IP takes precedence behind a reverse proxy
		if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
			if isLocalIP(realIP) || checker.isAllowed(realIP) {
				c.Next()
				return
			}
		}

		if isLocalIP(clientIP) || checker.isAllowed(clientIP) {
			c.Next()
			return
		}

		logger.Warn("mgt access denied: IP not in whitelist",
			logger.String("ip", clientIP),
			logger.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code": 403,
			"msg":  "access denied: IP not in whitelist",
		})
	}
}

// IPLimiter IP频率限制器
type IPLimiter struct {
	mu     sync.Mutex
	visits map[string][]int64
	limit  int
	window int64
}

// NewIPLimiter 创建IP限制器
func NewIPLimiter(limit int, windowSeconds int) *IPLimiter {
	return &IPLimiter{
		visits: make(map[string][]int64),
		limit:  limit,
		window: int64(windowSeconds),
	}
}

// Allow 检查是否允许访问
func (l *IPLimiter) Allow(ip string) bool {
	now := time.Now().Unix()

	l.mu.Lock()
	defer l.mu.Unlock()

	var valid []int64
	for _, ts := range l.visits[ip] {
		if now-ts < l.window {
			valid = append(valid, ts)
		}
	}
	l.visits[ip] = valid

	if len(l.visits[ip]) >= l.limit {
		return false
	}

	l.visits[ip] = append(l.visits[ip], now)
	return true
}

// RateLimitMW 频率限制中间件
func RateLimitMW(limiter *IPLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !limiter.Allow(ip) {
			logger.Warn("rate limit exceeded",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": 429,
				"msg":  "too many requests",
			})
			return
		}

		c.Next()
	}
}
