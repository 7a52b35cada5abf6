package discovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_URL(t *testing.T) {
	svc := Service{
		Hostname: "host.local",
		Port:     5050,
		Path:     "/config",
		IPv4Text: "192.168.1.50",
		Valid:    true,
	}
	url, err := svc.URL()
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.50:5050/config", url)
}

func TestService_URL_Invalid(t *testing.T) {
	_, err := Service{}.URL()
	require.Error(t, err)
}

func TestService_URL_TooLong(t *testing.T) {
	svc := Service{
		Port:     5050,
		Path:     "/" + strings.Repeat("p", 300),
		IPv4Text: "192.168.1.50",
		Valid:    true,
	}
	_, err := svc.URL()
	require.Error(t, err)
}

func TestStore_CommitIgnoresInvalid(t *testing.T) {
	st := NewStore()

	assert.False(t, st.Commit(Service{}))
	_, ok := st.Current()
	assert.False(t, ok)

	valid := Service{Port: 80, Path: "/c", IPv4Text: "10.0.0.1", Valid: true}
	assert.True(t, st.Commit(valid))

	got, ok := st.Current()
	require.True(t, ok)
	assert.Equal(t, valid, got)

	// An invalid commit later must not erase the record.
	assert.False(t, st.Commit(Service{Port: 9}))
	got, ok = st.Current()
	require.True(t, ok)
	assert.Equal(t, valid, got)
}
