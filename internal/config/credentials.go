package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// CredentialsPrefix is the environment prefix for platform credentials,
// e.g. REDDIT_CLIENT_ID
const CredentialsPrefix = "reddit"

// Credentials for a script application. All four account fields must be
// set to enable authenticated access.
type Credentials struct {
	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	Username     string `envconfig:"USERNAME"`
	Password     string `envconfig:"PASSWORD"`
	UserAgent    string `envconfig:"USER_AGENT"`
}

// LoadCredentials reads credentials from the environment, loading envFile
// first when it exists
func LoadCredentials(envFile string) (*Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			// A missing file just means everything comes from the environment
			if _, statErr := os.Stat(envFile); statErr == nil {
				logrus.Warnf("%s found but could not be loaded: %v", envFile, err)
			}
		}
	}

	var creds Credentials
	if err := envconfig.Process(CredentialsPrefix, &creds); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	return &creds, nil
}
