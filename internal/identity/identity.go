// Package identity defines how an exported Windows API symbol is uniquely
// named.
//
// A symbol is identified either by its raw export name, which is assumed to
// mean the same thing in every DLL that exports it, or by the pair
// (DLL name, ordinal) when the export has no name. Ordinals are only unique
// within one DLL, so the pair form always carries the DLL.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tells the two identity forms apart.
type Kind string

const (
	KindNamed   Kind = "named"
	KindOrdinal Kind = "ordinal"
)

// ErrInvalid is returned by Validate when an identity cannot be stored.
var ErrInvalid = errors.New("invalid symbol identity")

// Identity is implemented by Named and Ordinal only.
type Identity interface {
	Kind() Kind
	// Friendly returns the optional human-readable alias.
	Friendly() *string
	// DisplayName returns the friendly name when present, otherwise a name
	// derived from the identifying fields.
	DisplayName() string
	Validate() error

	isIdentity()
}

// Named identifies a symbol by its exported name.
type Named struct {
	RawName      string
	FriendlyName *string
}

// Ordinal identifies an unnamed export by the DLL that exports it and its
// ordinal within that DLL.
type Ordinal struct {
	DLLName      string
	Ordinal      int64
	FriendlyName *string
}

func (Named) Kind() Kind   { return KindNamed }
func (Ordinal) Kind() Kind { return KindOrdinal }

func (n Named) Friendly() *string   { return n.FriendlyName }
func (o Ordinal) Friendly() *string { return o.FriendlyName }

func (Named) isIdentity()   {}
func (Ordinal) isIdentity() {}

func (n Named) DisplayName() string {
	if n.FriendlyName != nil {
		return *n.FriendlyName
	}
	return n.RawName
}

func (o Ordinal) DisplayName() string {
	if o.FriendlyName != nil {
		return *o.FriendlyName
	}
	return o.Key()
}

// Key renders the pair as "<dll>#<ordinal>".
func (o Ordinal) Key() string {
	return fmt.Sprintf("%s#%d", o.DLLName, o.Ordinal)
}

func (n Named) Validate() error {
	if n.RawName == "" {
		return fmt.Errorf("%w: raw name must not be empty", ErrInvalid)
	}
	return validateFriendly(n.FriendlyName)
}

func (o Ordinal) Validate() error {
	if o.DLLName == "" {
		return fmt.Errorf("%w: dll name must not be empty", ErrInvalid)
	}
	if o.Ordinal < 0 {
		return fmt.Errorf("%w: ordinal %d is negative", ErrInvalid, o.Ordinal)
	}
	return validateFriendly(o.FriendlyName)
}

func validateFriendly(friendly *string) error {
	if friendly != nil && strings.TrimSpace(*friendly) == "" {
		return fmt.Errorf("%w: friendly name must be omitted rather than blank", ErrInvalid)
	}
	return nil
}

// FromParts builds an identity from the nullable storage representation. It
// fails unless exactly one of the two forms is populated.
func FromParts(rawName, dllName *string, ordinal *int64, friendlyName *string) (Identity, error) {
	hasName := rawName != nil
	hasPair := dllName != nil || ordinal != nil

	switch {
	case hasName && !hasPair:
		id := Named{RawName: *rawName, FriendlyName: friendlyName}
		return id, id.Validate()
	case !hasName && dllName != nil && ordinal != nil:
		id := Ordinal{DLLName: *dllName, Ordinal: *ordinal, FriendlyName: friendlyName}
		return id, id.Validate()
	case hasName && hasPair:
		return nil, fmt.Errorf("%w: both a raw name and a dll/ordinal pair are set", ErrInvalid)
	default:
		return nil, fmt.Errorf("%w: neither a raw name nor a complete dll/ordinal pair is set", ErrInvalid)
	}
}

// Parts is the inverse of FromParts.
func Parts(id Identity) (rawName, dllName *string, ordinal *int64, friendlyName *string) {
	switch v := id.(type) {
	case Named:
		name := v.RawName
		return &name, nil, nil, v.FriendlyName
	case Ordinal:
		dll := v.DLLName
		ord := v.Ordinal
		return nil, &dll, &ord, v.FriendlyName
	default:
		return nil, nil, nil, nil
	}
}
