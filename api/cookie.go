package api

import (
	"net/http"
	"time"

	"menuqr/config"
	"menuqr/middleware"

	"github.com/gin-gonic/gin"
)

// getCookieOptions Secure in release mode; SameSite=Lax keeps cross-site POSTs cookieless
func getCookieOptions() (secure bool, sameSite http.SameSite) {
	if cfg := config.GlobalConfig; cfg != nil && cfg.Server.Mode == "release" {
		secure = true
	}
	sameSite = http.SameSiteLaxMode
	return
}

func setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	secure, sameSite := getCookieOptions()
	c.SetSameSite(sameSite)
	c.SetCookie(middleware.SessionCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context) {
	secure, sameSite := getCookieOptions()
	c.SetSameSite(sameSite)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", secure, true)
}
