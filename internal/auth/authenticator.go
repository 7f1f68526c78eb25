package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/storage"
	"github.com/signage-server/signage-server-pro/pkg/crypto"
)

// ErrInvalidCredentials is returned for any failed login, regardless
// of which part of the credentials was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Principal is the resolved identity of a logged-in account
type Principal struct {
	ID      uuid.UUID
	Role    Role
	Name    string
	Email   string
	Account interface{}
}

// Authenticator resolves login credentials against the three account
// tables in tier order: masters, then agencies, then agency clients.
// A master and an agency sharing an email resolve to the master.
type Authenticator struct {
	store storage.Store
}

// NewAuthenticator creates an authenticator backed by the given store
func NewAuthenticator(store storage.Store) *Authenticator {
	return &Authenticator{store: store}
}

// Login verifies the credentials and returns the matching principal.
// Every failure path returns ErrInvalidCredentials so responses do not
// reveal whether the email exists.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Principal, error) {
	if master, err := a.store.GetMasterByEmail(ctx, email); err == nil {
		if !crypto.VerifyPassword(password, master.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		return &Principal{
			ID:      master.ID,
			Role:    RoleMaster,
			Name:    master.Name,
			Email:   master.Email,
			Account: master,
		}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if agency, err := a.store.GetAgencyByEmail(ctx, email); err == nil {
		if !crypto.VerifyPassword(password, agency.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		return &Principal{
			ID:      agency.ID,
			Role:    RoleAgency,
			Name:    agency.Name,
			Email:   agency.Email,
			Account: agency,
		}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if client, err := a.store.GetAgencyClientByEmail(ctx, email); err == nil {
		if !crypto.VerifyPassword(password, client.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		return &Principal{
			ID:      client.ID,
			Role:    RoleAgencyClient,
			Name:    client.BusinessName,
			Email:   client.BusinessEmail,
			Account: client,
		}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	return nil, ErrInvalidCredentials
}
