package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidServiceAccount wraps every failure to read or parse the key file.
var ErrInvalidServiceAccount = errors.New("invalid service account key")

// ServiceAccount is the subset of a Google service account key the migration
// needs. Raw keeps the file contents for the client library.
type ServiceAccount struct {
	Type        string `json:"type" validate:"eq=service_account"`
	ProjectID   string `json:"project_id" validate:"required"`
	ClientEmail string `json:"client_email" validate:"required,email"`
	PrivateKey  string `json:"private_key" validate:"required"`

	Raw []byte `json:"-"`
}

func LoadServiceAccount(path string) (*ServiceAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServiceAccount, err)
	}

	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidServiceAccount, path, err)
	}
	if err := validator.New().Struct(&sa); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidServiceAccount, path, err)
	}
	sa.Raw = raw
	return &sa, nil
}
