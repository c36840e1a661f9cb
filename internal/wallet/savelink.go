package wallet

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const saveLinkPrefix = "https://pay.google.com/gp/v/save/"

// SaveLinkMinter signs save-to-wallet deep links with a service-account key.
type SaveLinkMinter struct {
	issuerEmail string
	privateKey  *rsa.PrivateKey
	origins     []string
}

// NewSaveLinkMinter parses the service-account credentials JSON and prepares
// the RS256 signing key.
func NewSaveLinkMinter(credentialsJSON []byte, origins []string) (*SaveLinkMinter, error) {
	var sa struct {
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
	}
	if err := json.Unmarshal(credentialsJSON, &sa); err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, fmt.Errorf("credentials missing client_email or private_key")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}

	return &SaveLinkMinter{
		issuerEmail: sa.ClientEmail,
		privateKey:  key,
		origins:     origins,
	}, nil
}

// MintSaveLink signs a JWT listing the object ids and embeds it in the
// save-to-wallet URL. Links are regenerable and never persisted.
func (m *SaveLinkMinter) MintSaveLink(objectIDs []string) (string, error) {
	objects := make([]map[string]string, 0, len(objectIDs))
	for _, id := range objectIDs {
		objects = append(objects, map[string]string{"id": id})
	}

	claims := jwt.MapClaims{
		"iss":     m.issuerEmail,
		"aud":     "google",
		"typ":     "savetowallet",
		"origins": m.origins,
		"payload": map[string]any{
			"genericObjects": objects,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign save link: %w", err)
	}

	return saveLinkPrefix + signed, nil
}
