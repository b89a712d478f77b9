package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinProxySwitcher(t *testing.T) {
	p, err := RoundRobinProxySwitcher("http://127.0.0.1:8888", "http://127.0.0.1:8889")
	require.NoError(t, err)

	var got []string
	for i := 0; i < 3; i++ {
		u, err := p(nil)
		require.NoError(t, err)
		got = append(got, u.Host)
	}
	assert.Equal(t, []string{"127.0.0.1:8888", "127.0.0.1:8889", "127.0.0.1:8888"}, got)
}

func TestRoundRobinProxySwitcher_Invalid(t *testing.T) {
	_, err := RoundRobinProxySwitcher()
	assert.ErrorIs(t, err, ErrEmptyProxy)

	_, err = RoundRobinProxySwitcher("http://[::1")
	assert.Error(t, err)
}
