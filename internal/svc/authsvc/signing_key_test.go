package authsvc_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/fishpizzaria/internal/svc/authsvc"
)

func TestGetPrivateKey_GeneratesThenReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keys", "apisvc.key")

	generated, err := authsvc.GetPrivateKey(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := authsvc.GetPrivateKey(path)
	require.NoError(t, err)
	assert.True(t, generated.Equal(loaded))
}

func TestDecodePrivateKey_Invalid(t *testing.T) {
	t.Parallel()

	_, err := authsvc.DecodePrivateKey(strings.NewReader("not a pem file"))
	require.ErrorIs(t, err, authsvc.ErrInvalidSigningKey)

	_, err = authsvc.DecodePrivateKey(strings.NewReader("-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n"))
	require.ErrorIs(t, err, authsvc.ErrInvalidSigningKey)
}
