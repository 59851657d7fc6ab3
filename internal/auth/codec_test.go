package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Unix(1_700_000_000, 0).UTC()

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sampleClaims(nbf time.Time, ttl time.Duration) *Claims {
	return &Claims{
		Premium:       true,
		Name:          "Alice",
		Email:         "a@b.com",
		EmailVerified: true,
		AMR:           []string{"Application"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			NotBefore: jwt.NewNumericDate(nbf),
			ExpiresAt: jwt.NewNumericDate(nbf.Add(ttl)),
		},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("round-trip-secret")
	in := sampleClaims(baseTime, time.Hour)

	token, err := NewClaimsCodec().Encode(in, secret)
	require.NoError(t, err)

	out, err := NewClaimsCodec(WithClock(fixedClock(baseTime.Add(30*time.Minute)))).Decode(token, secret)
	require.NoError(t, err)

	assert.Equal(t, in.Subject, out.Subject)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Email, out.Email)
	assert.Equal(t, in.Premium, out.Premium)
	assert.Equal(t, in.EmailVerified, out.EmailVerified)
	assert.Equal(t, in.AMR, out.AMR)
	assert.Equal(t, in.NotBefore.Unix(), out.NotBefore.Unix())
	assert.Equal(t, in.ExpiresAt.Unix(), out.ExpiresAt.Unix())
}

func TestCodec_EncodeIsDeterministic(t *testing.T) {
	t.Parallel()

	codec := NewClaimsCodec()
	secret := []byte("det")
	a, err := codec.Encode(sampleClaims(baseTime, time.Hour), secret)
	require.NoError(t, err)
	b, err := codec.Encode(sampleClaims(baseTime, time.Hour), secret)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCodec_SecretIsolation(t *testing.T) {
	t.Parallel()

	codec := NewClaimsCodec(WithClock(fixedClock(baseTime)))
	token, err := codec.Encode(sampleClaims(baseTime, time.Hour), []byte("secret-a"))
	require.NoError(t, err)

	_, err = codec.Decode(token, []byte("secret-b"))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	secret := []byte("exp")
	claims := sampleClaims(baseTime, time.Hour)
	exp := claims.ExpiresAt.Time

	token, err := NewClaimsCodec().Encode(claims, secret)
	require.NoError(t, err)

	_, err = NewClaimsCodec(WithClock(fixedClock(exp.Add(-time.Second)))).Decode(token, secret)
	assert.NoError(t, err, "one second before exp must be valid")

	_, err = NewClaimsCodec(WithClock(fixedClock(exp))).Decode(token, secret)
	assert.ErrorIs(t, err, ErrExpired, "exp itself is outside the window")
}

func TestCodec_NotBeforeBoundary(t *testing.T) {
	t.Parallel()

	secret := []byte("nbf")
	token, err := NewClaimsCodec().Encode(sampleClaims(baseTime, time.Hour), secret)
	require.NoError(t, err)

	_, err = NewClaimsCodec(WithClock(fixedClock(baseTime.Add(-time.Second)))).Decode(token, secret)
	assert.ErrorIs(t, err, ErrNotYetValid)

	_, err = NewClaimsCodec(WithClock(fixedClock(baseTime))).Decode(token, secret)
	assert.NoError(t, err)
}

func TestCodec_Malformed(t *testing.T) {
	t.Parallel()

	codec := NewClaimsCodec()
	for _, token := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := codec.Decode(token, []byte("k"))
		assert.ErrorIs(t, err, ErrMalformed, "token %q", token)
	}
}

func TestCodec_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("alg")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, sampleClaims(baseTime, time.Hour)).SignedString(secret)
	require.NoError(t, err)

	_, err = NewClaimsCodec(WithClock(fixedClock(baseTime))).Decode(token, secret)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_EncodeRejectsInvertedWindow(t *testing.T) {
	t.Parallel()

	codec := NewClaimsCodec()
	_, err := codec.Encode(sampleClaims(baseTime, 0), []byte("k"))
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = codec.Encode(sampleClaims(baseTime, -time.Minute), []byte("k"))
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = codec.Encode(sampleClaims(baseTime, time.Hour), nil)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestCodec_DecodeRequiresValidityWindow(t *testing.T) {
	t.Parallel()

	secret := []byte("window-secret")
	codec := NewClaimsCodec(WithClock(fixedClock(baseTime)))

	sign := func(claims jwt.RegisteredClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)
		return token
	}

	noNotBefore := sign(jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(baseTime.Add(time.Hour)),
	})
	_, err := codec.Decode(noNotBefore, secret)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	noExpiry := sign(jwt.RegisteredClaims{
		Subject:   "u1",
		NotBefore: jwt.NewNumericDate(baseTime),
	})
	_, err = codec.Decode(noExpiry, secret)
	assert.Error(t, err)
}
