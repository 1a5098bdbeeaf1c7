package services

import (
	"testing"

	"collect-api/internal/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testIdentity(role string) auth.Identity {
	return auth.Identity{
		ID:    uuid.New(),
		Email: "user@example.com",
		Role:  role,
	}
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, kind, svcErr.Kind)
}
