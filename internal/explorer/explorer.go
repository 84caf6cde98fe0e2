package explorer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"swapboard/internal/model"
)

type Kind string

const (
	Transaction Kind = "tx"
	Address     Kind = "address"
	Token       Kind = "token"
)

var ErrUnknownKind = errors.New("unknown explorer record kind")

const DefaultBaseURL = "https://etherscan.io"

// Linker builds block-explorer detail URLs.
type Linker struct {
	base *url.URL
}

func NewLinker(baseURL string) (*Linker, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse explorer base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("explorer base url %q: scheme must be http or https", baseURL)
	}
	return &Linker{base: u}, nil
}

// URL returns the detail page for id. Addresses are shown checksummed.
func (l *Linker) URL(id string, kind Kind) (string, error) {
	switch kind {
	case Transaction:
	case Address, Token:
		id = model.ChecksumAddress(id)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return l.base.JoinPath(string(kind), id).String(), nil
}

// TxURL is URL for a transaction hash; an empty hash links nowhere.
func (l *Linker) TxURL(hash string) string {
	if hash == "" {
		return ""
	}
	u, _ := l.URL(hash, Transaction)
	return u
}
