// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/taibuivan/inkwell/internal/platform/constants"
)

// CookiePolicy holds the attributes shared by both auth cookies.
//
// Cross-site deployments need SameSite=None, which browsers only accept
// together with Secure.
//
// The MaxAge fields follow the token lifetimes; zero means the platform default.
type CookiePolicy struct {
	Secure    bool
	CrossSite bool

	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

func (policy CookiePolicy) sameSite() http.SameSite {
	if policy.CrossSite {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (policy CookiePolicy) cookie(name, value, path string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(maxAge / time.Second),
		Secure:   policy.Secure || policy.CrossSite,
		HttpOnly: true,
		SameSite: policy.sameSite(),
	}
}

// setAccessCookie mirrors the access token. MaxAge equals the token lifetime on
// every call site.
func (policy CookiePolicy) setAccessCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, policy.cookie(
		constants.AccessTokenCookieName, token, constants.AccessTokenCookiePath,
		orDefault(policy.AccessMaxAge, constants.AccessTokenTTL),
	))
}

func (policy CookiePolicy) setRefreshCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, policy.cookie(
		constants.RefreshTokenCookieName, token, constants.RefreshTokenCookiePath,
		orDefault(policy.RefreshMaxAge, constants.RefreshTokenTTL),
	))
}

// clearCookies expires both auth cookies.
func (policy CookiePolicy) clearCookies(writer http.ResponseWriter) {
	access := policy.cookie(constants.AccessTokenCookieName, "", constants.AccessTokenCookiePath, 0)
	access.MaxAge = -1
	http.SetCookie(writer, access)

	refresh := policy.cookie(constants.RefreshTokenCookieName, "", constants.RefreshTokenCookiePath, 0)
	refresh.MaxAge = -1
	http.SetCookie(writer, refresh)
}
