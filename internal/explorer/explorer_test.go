package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkerURL(t *testing.T) {
	l, err := NewLinker("")
	require.NoError(t, err)

	u, err := l.URL("0xabc123", Transaction)
	require.NoError(t, err)
	assert.Equal(t, "https://etherscan.io/tx/0xabc123", u)

	u, err = l.URL("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", Address)
	require.NoError(t, err)
	assert.Equal(t, "https://etherscan.io/address/0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", u)

	_, err = l.URL("0xabc", Kind("block"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestLinkerCustomBase(t *testing.T) {
	l, err := NewLinker("https://rinkeby.etherscan.io/")
	require.NoError(t, err)
	assert.Equal(t, "https://rinkeby.etherscan.io/tx/0x01", l.TxURL("0x01"))
	assert.Equal(t, "", l.TxURL(""))
}

func TestNewLinkerRejectsBadScheme(t *testing.T) {
	_, err := NewLinker("ftp://example.com")
	assert.Error(t, err)
}
