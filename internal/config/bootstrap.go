package config

// BootstrapConfig names the first administrator account. When Email is
// set the server creates the account at startup unless it already exists.
type BootstrapConfig struct {
	Name     string `envconfig:"ADMIN_NAME" default:"System Administrator"`
	Email    string `envconfig:"ADMIN_EMAIL"`
	Password string `envconfig:"ADMIN_PASSWORD"`
	Address  string `envconfig:"ADMIN_ADDRESS"`
}

// Enabled reports whether an admin account should be ensured.
func (c BootstrapConfig) Enabled() bool { return c.Email != "" }
