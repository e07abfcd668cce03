package models

import (
	"crypto/tls"
	"fmt"

	"code.cloudfoundry.org/tlsconfig"
	"golang.org/x/crypto/bcrypt"
)

type TLSCerts struct {
	KeyFile    string `yaml:"key_file" json:"keyFile"`
	CertFile   string `yaml:"cert_file" json:"certFile"`
	CACertFile string `yaml:"ca_file" json:"caCertFile"`
}

func (t *TLSCerts) CreateClientConfig() (*tls.Config, error) {
	if t != nil && t.CertFile != "" && t.KeyFile != "" {
		client := tlsconfig.Build(tlsconfig.WithIdentityFromFile(t.CertFile, t.KeyFile))
		if t.CACertFile != "" {
			return client.Client(tlsconfig.WithAuthorityFromFile(t.CACertFile))
		}
		return client.Client()
	}
	return nil, nil
}

func (t *TLSCerts) CreateServerConfig() (*tls.Config, error) {
	if t != nil && t.CertFile != "" && t.KeyFile != "" {
		build := tlsconfig.Build(tlsconfig.WithIdentityFromFile(t.CertFile, t.KeyFile))
		if t.CACertFile != "" {
			return build.Server(tlsconfig.WithClientAuthenticationFromFile(t.CACertFile))
		}
		return build.Server()
	}
	return nil, nil
}

type BasicAuth struct {
	Username     string `yaml:"username" json:"username"`
	UsernameHash string `yaml:"username_hash" json:"usernameHash"`
	Password     string `yaml:"password" json:"password"`
	PasswordHash string `yaml:"password_hash" json:"passwordHash"`
}

var ErrConfiguration = fmt.Errorf("configuration error")

func (ba *BasicAuth) Validate() error {
	if ba.Username != "" && ba.UsernameHash != "" {
		return fmt.Errorf("%w: both username and username_hash are set, please provide only one of them", ErrConfiguration)
	}
	if ba.Password != "" && ba.PasswordHash != "" {
		return fmt.Errorf("%w: both password and password_hash are set, please provide only one of them", ErrConfiguration)
	}
	if ba.UsernameHash != "" {
		if _, err := bcrypt.Cost([]byte(ba.UsernameHash)); err != nil {
			return fmt.Errorf("%w: username_hash is not a valid bcrypt hash", ErrConfiguration)
		}
	}
	if ba.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(ba.PasswordHash)); err != nil {
			return fmt.Errorf("%w: password_hash is not a valid bcrypt hash", ErrConfiguration)
		}
	}
	if ba.Username == "" && ba.Password != "" {
		return fmt.Errorf("%w: username is empty", ErrConfiguration)
	}
	if ba.Username != "" && ba.Password == "" {
		return fmt.Errorf("%w: password is empty", ErrConfiguration)
	}
	return nil
}
