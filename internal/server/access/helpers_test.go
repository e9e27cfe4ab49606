package access

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}
