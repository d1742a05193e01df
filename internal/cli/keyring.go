package cli

import (
	"fmt"

	"github.com/akozlov/habitbot/internal/keyring"
)

// KeyringSetCmd stores the database connection string in the OS keyring.
type KeyringSetCmd struct {
	ConnStr string `arg:"" help:"PostgreSQL connection string or SQLite file path."`
}

func (c *KeyringSetCmd) Run(appCtx *Context) error {
	if err := keyring.SetConnectionString(c.ConnStr); err != nil {
		return err
	}
	fmt.Println("✓ Connection string stored in OS keyring")
	return nil
}

// KeyringDeleteCmd removes the stored connection string.
type KeyringDeleteCmd struct{}

func (c *KeyringDeleteCmd) Run(appCtx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		return err
	}
	fmt.Println("✓ Connection string removed from OS keyring")
	return nil
}
