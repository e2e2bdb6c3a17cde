/*
Package auth implements the authorization guard: it proves that the current
call was sanctioned by a given identity.
*/
package auth

import (
	"errors"
	"fmt"

	"github.com/carbonmarket/carbon-controller-go/predicates/templates"
	"github.com/carbonmarket/carbon-controller-go/types"
)

var ErrNoProof = errors.New("missing authorization proof")

// Guard is consulted once per identity whose authorization a call requires.
type Guard interface {
	RequireAuth(id types.Address) error
}

/*
SignatureGuard holds the identities which have signed the call order and the
nonce of the order. The nonce is consumed by the controller in the same
transaction as the call.
*/
type SignatureGuard struct {
	signers map[types.Address]struct{}
	nonce   uint64
}

/*
NewSignatureGuard verifies every signature of the call order and returns
guard which authorizes the signers. Any invalid signature fails the call as a
whole.
*/
func NewSignatureGuard(order *types.CallOrder) (*SignatureGuard, error) {
	digest, err := order.Digest()
	if err != nil {
		return nil, fmt.Errorf("calculating call order digest: %w", err)
	}
	g := &SignatureGuard{signers: make(map[types.Address]struct{}, len(order.AuthProof)), nonce: order.Nonce}
	for i, proof := range order.AuthProof {
		addr, err := templates.VerifyP2pkhSignature(proof, digest)
		if err != nil {
			return nil, fmt.Errorf("verifying authorization proof %d: %w", i, err)
		}
		g.signers[addr] = struct{}{}
	}
	return g, nil
}

func (g *SignatureGuard) RequireAuth(id types.Address) error {
	if _, ok := g.signers[id]; !ok {
		return fmt.Errorf("%w of %s", ErrNoProof, id)
	}
	return nil
}

// Nonce returns the nonce of the signed call order.
func (g *SignatureGuard) Nonce() uint64 {
	return g.nonce
}

// Signers returns the identities which have authorized the call.
func (g *SignatureGuard) Signers() []types.Address {
	res := make([]types.Address, 0, len(g.signers))
	for a := range g.signers {
		res = append(res, a)
	}
	return res
}

/*
Static authorizes a fixed set of identities. Meant for hosts which have
already authenticated the caller by other means and for tests.
*/
type Static []types.Address

func (s Static) RequireAuth(id types.Address) error {
	for _, a := range s {
		if a == id {
			return nil
		}
	}
	return fmt.Errorf("%w of %s", ErrNoProof, id)
}
