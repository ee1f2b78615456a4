package config

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig groups credential table and route guard configuration.
type AuthConfig struct {
	// CredentialsFile points at a JSON credential table; empty uses the demo accounts.
	CredentialsFile string `env:"AUTH_CREDENTIALS_FILE" envDefault:""`

	// BcryptCost hashes plaintext secrets found in the credential table.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`

	// LoginPath and HomePath are where the guard sends anonymous and forbidden browsers.
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`
	HomePath  string `env:"AUTH_HOME_PATH"  envDefault:"/"`

	// ShowDemoAccounts lists the demo accounts on the login page.
	ShowDemoAccounts bool `env:"AUTH_SHOW_DEMO_ACCOUNTS" envDefault:"true"`
}

// Sanitize clamps the bcrypt cost and normalises redirect paths.
func (a *AuthConfig) Sanitize() {
	a.CredentialsFile = strings.TrimSpace(a.CredentialsFile)
	if a.BcryptCost < bcrypt.MinCost || a.BcryptCost > bcrypt.MaxCost {
		a.BcryptCost = bcrypt.DefaultCost
	}
	a.LoginPath = localPath(a.LoginPath, "/login")
	a.HomePath = localPath(a.HomePath, "/")
}

// localPath rejects anything that is not an absolute in-site path.
func localPath(p, fallback string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return fallback
	}
	return p
}
