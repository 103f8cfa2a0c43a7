package gcp

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
)

// ServiceAccount is the decoded identity-provider credential shared by the
// token verifier and the GCP clients.
type ServiceAccount struct {
	JSON        []byte
	ProjectID   string
	ClientEmail string
}

type serviceAccountFile struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// ParseServiceAccount accepts raw JSON or base64-encoded JSON.
func ParseServiceAccount(raw string) (*ServiceAccount, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("service account credential is empty")
	}

	data := []byte(raw)
	if !strings.HasPrefix(raw, "{") {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(raw)
		}
		if err != nil {
			return nil, fmt.Errorf("service account credential is neither JSON nor base64: %w", err)
		}
		data = decoded
	}

	var f serviceAccountFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode service account JSON: %w", err)
	}
	if strings.TrimSpace(f.ProjectID) == "" {
		return nil, errors.New("service account JSON has no project_id")
	}
	return &ServiceAccount{JSON: data, ProjectID: f.ProjectID, ClientEmail: f.ClientEmail}, nil
}

// ClientOptions returns the options every GCP client is built with. A nil
// account falls back to application default credentials.
func ClientOptions(sa *ServiceAccount) []option.ClientOption {
	if sa == nil || len(sa.JSON) == 0 {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsJSON(sa.JSON)}
}
