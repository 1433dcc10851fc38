// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/inkwell/internal/platform/sec"
)

const (
	testAccessSecret  = "access-secret-access-secret-0123456789"
	testRefreshSecret = "refresh-secret-refresh-secret-0123456789"
	testIssuer        = "inkwell.test"
)

// fakeClock is a settable time source shared by the codec under test.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCodec(t *testing.T, clock *fakeClock) *sec.TokenCodec {
	t.Helper()
	codec, err := sec.NewTokenCodec(testAccessSecret, testRefreshSecret, testIssuer, sec.WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

/*
TestNewTokenCodec_MissingSecret ensures that a codec cannot be built without both secrets.
*/
func TestNewTokenCodec_MissingSecret(t *testing.T) {
	tests := []struct {
		name          string
		accessSecret  string
		refreshSecret string
	}{
		{"missing_access", "", testRefreshSecret},
		{"missing_refresh", testAccessSecret, ""},
		{"missing_both", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := sec.NewTokenCodec(tt.accessSecret, tt.refreshSecret, testIssuer)
			assert.Nil(t, codec)
			assert.ErrorIs(t, err, sec.ErrConfig)
		})
	}
}

/*
TestTokenCodec_ZeroValue ensures that an unconfigured codec fails closed.
*/
func TestTokenCodec_ZeroValue(t *testing.T) {
	var codec sec.TokenCodec

	_, _, err := codec.Sign(sec.KindAccess, sec.Claims{Email: "a@x.com"}, time.Hour)
	assert.ErrorIs(t, err, sec.ErrConfig)

	_, err = codec.Verify(sec.KindAccess, "anything")
	assert.ErrorIs(t, err, sec.ErrConfig)
}

/*
TestTokenCodec_ExpiryBoundary checks the exact expiry boundary.

A token issued at T with lifetime L is accepted strictly before T+L and
rejected at T+L and afterwards.
*/
func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Unix(1_760_000_000, 0)
	clock := &fakeClock{now: issuedAt}
	codec := newTestCodec(t, clock)

	ttl := 10 * time.Hour
	token, expiresAt, err := codec.Sign(sec.KindAccess, sec.Claims{UserID: "u-1", Email: "a@x.com"}, ttl)
	require.NoError(t, err)
	assert.True(t, expiresAt.Equal(issuedAt.Add(ttl)))

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"at_issue", issuedAt, nil},
		{"one_millisecond_before_expiry", issuedAt.Add(ttl - time.Millisecond), nil},
		{"exactly_at_expiry", issuedAt.Add(ttl), sec.ErrExpired},
		{"one_second_after_expiry", issuedAt.Add(ttl + time.Second), sec.ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.now = tt.at

			claims, err := codec.Verify(sec.KindAccess, token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "u-1", claims.UserID)
			assert.Equal(t, "a@x.com", claims.Email)
			assert.Equal(t, testIssuer, claims.Issuer)
		})
	}
}

/*
TestTokenCodec_SignatureFailures covers every way a token can fail the signature check.
*/
func TestTokenCodec_SignatureFailures(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_760_000_000, 0)}
	codec := newTestCodec(t, clock)

	valid, _, err := codec.Sign(sec.KindAccess, sec.Claims{UserID: "u-1", Email: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	refresh, _, err := codec.Sign(sec.KindRefresh, sec.Claims{Email: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := sec.NewTokenCodec(testAccessSecret, testRefreshSecret, "someone.else", sec.WithClock(clock.Now))
	require.NoError(t, err)
	foreign, _, err := otherIssuer.Sign(sec.KindAccess, sec.Claims{UserID: "u-1", Email: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	registered := jwt.RegisteredClaims{
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, sec.Claims{RegisteredClaims: registered, Email: "a@x.com"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, sec.Claims{RegisteredClaims: registered, Email: "a@x.com"}).
		SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sec.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: testIssuer},
		Email:            "a@x.com",
	}).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"tampered_signature", tamperSignature(valid)},
		{"refresh_token_on_access_secret", refresh},
		{"wrong_issuer", foreign},
		{"alg_none", unsigned},
		{"other_algorithm", hs512},
		{"missing_expiry", noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Verify(sec.KindAccess, tt.token)
			assert.ErrorIs(t, err, sec.ErrInvalidSignature)
			assert.Nil(t, claims)
		})
	}
}

/*
TestTokenCodec_SignatureCheckedFirst ensures that an expired token with a bad
signature reports the signature failure rather than expiry.
*/
func TestTokenCodec_SignatureCheckedFirst(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_760_000_000, 0)}
	codec := newTestCodec(t, clock)

	token, _, err := codec.Sign(sec.KindAccess, sec.Claims{UserID: "u-1", Email: "a@x.com"}, time.Minute)
	require.NoError(t, err)

	clock.now = clock.now.Add(time.Hour)

	_, err = codec.Verify(sec.KindAccess, tamperSignature(token))
	assert.ErrorIs(t, err, sec.ErrInvalidSignature)

	_, err = codec.Verify(sec.KindAccess, token)
	assert.ErrorIs(t, err, sec.ErrExpired)
}

/*
TestTokenIssuer_RoundTrip verifies the claim shape of each token kind.
*/
func TestTokenIssuer_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_760_000_000, 0)}
	issuer := sec.NewTokenIssuer(newTestCodec(t, clock), 10*time.Hour, 7*24*time.Hour)

	identity := sec.Identity{UserID: "u-1", Email: "a@x.com", DisplayName: "Ada"}

	// 1. Access token carries the full identity
	access, err := issuer.IssueAccessToken(identity)
	require.NoError(t, err)
	assert.True(t, access.ExpiresAt.Equal(clock.now.Add(10*time.Hour)))

	verified, err := issuer.VerifyAccessToken(access.Token)
	require.NoError(t, err)
	assert.Equal(t, identity, *verified)

	// 2. Refresh token carries only the email
	refresh, err := issuer.IssueRefreshToken(identity)
	require.NoError(t, err)
	assert.True(t, refresh.ExpiresAt.Equal(clock.now.Add(7*24*time.Hour)))

	email, err := issuer.VerifyRefreshToken(refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	// 3. Kinds are not interchangeable
	_, err = issuer.VerifyAccessToken(refresh.Token)
	assert.ErrorIs(t, err, sec.ErrInvalidSignature)

	_, err = issuer.VerifyRefreshToken(access.Token)
	assert.ErrorIs(t, err, sec.ErrInvalidSignature)
}

/*
TestTokenIssuer_RefreshExpiry checks that an expired refresh token is reported as expired.
*/
func TestTokenIssuer_RefreshExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_760_000_000, 0)}
	issuer := sec.NewTokenIssuer(newTestCodec(t, clock), 10*time.Hour, 7*24*time.Hour)

	refresh, err := issuer.IssueRefreshToken(sec.Identity{Email: "a@x.com"})
	require.NoError(t, err)

	clock.now = refresh.ExpiresAt

	_, err = issuer.VerifyRefreshToken(refresh.Token)
	assert.ErrorIs(t, err, sec.ErrExpired)
}

/*
TestPasswordHash checks the bcrypt round trip.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, sec.CheckPasswordHash("correct horse", hash))
	assert.False(t, sec.CheckPasswordHash("wrong horse", hash))
	assert.False(t, sec.CheckPasswordHash("correct horse", "not-a-bcrypt-hash"))

	assert.NotPanics(t, func() { sec.BurnPasswordCheck("anything") })
}

// tamperSignature flips one character in the middle of the signature segment.
// The middle is used because the final base64 character may carry only padding bits.
func tamperSignature(token string) string {
	parts := strings.Split(token, ".")
	signature := []byte(parts[2])

	middle := len(signature) / 2
	if signature[middle] == 'A' {
		signature[middle] = 'B'
	} else {
		signature[middle] = 'A'
	}

	parts[2] = string(signature)
	return strings.Join(parts, ".")
}
