// Package gsa validates Google service-account credential files.
package gsa

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"

	"github.com/oukeidos/vidlens/internal/apperrors"
)

// Info summarizes a validated service-account file.
type Info struct {
	ClientEmail string
	ProjectID   string
}

type credentialFile struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// ValidateFile checks that path points to a parseable service-account JSON
// file with signing material. It never calls Google; a network round-trip is
// not needed to tell a malformed file from a usable one.
func ValidateFile(path string) (*Info, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.MissingFile("No credential file selected. Please choose a JSON file first.")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.New(
				apperrors.KindMissingFile,
				fmt.Sprintf("Credential file not found: %s", path),
				err,
			)
		}
		return nil, apperrors.New(
			apperrors.KindMissingFile,
			fmt.Sprintf("Credential file could not be read: %s", path),
			err,
		)
	}

	return ValidateJSON(data)
}

// ValidateJSON validates raw service-account JSON content.
func ValidateJSON(data []byte) (*Info, error) {
	var head credentialFile
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, apperrors.Format(fmt.Errorf("credential file is not valid JSON: %w", err))
	}
	if head.Type != "service_account" {
		return nil, apperrors.New(
			apperrors.KindFormat,
			"The file is not a service-account credential (missing type=service_account).",
			fmt.Errorf("unexpected credential type %q", head.Type),
		)
	}

	conf, err := google.JWTConfigFromJSON(data, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, apperrors.Format(fmt.Errorf("credential file failed JWT config parsing: %w", err))
	}
	if len(conf.PrivateKey) == 0 || conf.Email == "" {
		return nil, apperrors.New(
			apperrors.KindFormat,
			"The credential file is missing its private key or client email.",
			nil,
		)
	}

	return &Info{
		ClientEmail: conf.Email,
		ProjectID:   head.ProjectID,
	}, nil
}
