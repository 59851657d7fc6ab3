package auth

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/warden/internal/domain"
)

// MockCredentialStore implements CredentialStore.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	args := m.Called(ctx, email)
	identity, _ := args.Get(0).(*domain.Identity)
	return identity, args.Error(1)
}

func (m *MockCredentialStore) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	args := m.Called(ctx, id)
	identity, _ := args.Get(0).(*domain.Identity)
	return identity, args.Error(1)
}

// countingDecoder records whether decoding was attempted.
type countingDecoder struct {
	inner   *ClaimsCodec
	calls   int
	secrets [][]byte
}

func (d *countingDecoder) Decode(token string, secret []byte) (*Claims, error) {
	d.calls++
	d.secrets = append(d.secrets, secret)
	return d.inner.Decode(token, secret)
}

var testSecrets = Secrets{Access: []byte("access-secret"), Refresh: []byte("refresh-secret")}

func testIdentity() *domain.Identity {
	name := "Alice"
	return &domain.Identity{
		ID:                 "u1",
		Name:               &name,
		Email:              "a@b.com",
		MasterPasswordHash: "H",
		Key:                "2.vault-key",
		PrivateKey:         "2.private-key",
		PublicKey:          "public-key",
		KdfType:            domain.KdfTypePBKDF2,
		KdfIterations:      600000,
	}
}
