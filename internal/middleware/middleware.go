package middleware

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"forum_go/internal/core/config"
	"forum_go/internal/core/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// LoggerMiddleware 请求日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("request",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("query", query),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		)
	}
}

// RecoveryMiddleware 异常恢复中间件
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					logger.String("error", fmt.Sprintf("%v", err)),
					logger.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(500, gin.H{
					"code": 500,
					"msg":  "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// JWTMW JWT中间件
//
// 解析通过后把 uid/username/role 写进 gin 上下文，handler 层再组装
// 成 service.Actor。
func JWTMW(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(401, gin.H{
				"code": 401,
				"msg":  "unauthorized",
			})
			return
		}

		if !strings.HasPrefix(token, "Bearer ") {
			c.AbortWithStatusJSON(401, gin.H{
				"code": 401,
				"msg":  "invalid token format: missing 'Bearer ' prefix",
			})
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := ParseJWT(token, cfg.Secret)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{
				"code": 401,
				"msg":  "invalid token",
			})
			return
		}

		if uid, ok := int64Claim(claims, "uid"); ok {
			c.Set("uid", uid)
		}
		if role, ok := int64Claim(claims, "role"); ok {
			c.Set("role", int(role))
		}
		if username, ok := claims["username"].(string); ok {
			c.Set("username", username)
		}

		c.Next()
	}
}

// ParseJWT 解析JWT
//
// 数值 claim 以 json.Number 返回：uid 是 19 位 snowflake，超出 float64
// 的 53 位精度，经 float64 解码会损坏低位。
func ParseJWT(tokenString, secret string) (map[string]interface{}, error) {
	parser := jwt.NewParser(jwt.WithJSONNumber())
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return map[string]interface{}(claims), nil
	}
	return nil, fmt.Errorf("invalid token")
}

// int64Claim 无损读取整数 claim
func int64Claim(claims map[string]interface{}, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case int64:
		return v, true
	}
	return 0, false
}
