package session

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentifier_HeaderWins(t *testing.T) {
	r := httptest.NewRequest("POST", "/tasks?session_id=from-query", nil)
	r.Header.Set(HeaderName, "from-header")

	require.Equal(t, "from-header", Identifier(r, "from-body"))
}

func TestIdentifier_BodyBeatsQuery(t *testing.T) {
	r := httptest.NewRequest("POST", "/tasks?session_id=from-query", nil)

	require.Equal(t, "from-body", Identifier(r, "from-body"))
}

func TestIdentifier_QueryFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/tasks?session_id=from-query", nil)

	require.Equal(t, "from-query", Identifier(r, ""))
}

func TestIdentifier_Absent(t *testing.T) {
	r := httptest.NewRequest("GET", "/tasks", nil)

	require.Equal(t, "", Identifier(r, ""))
}
