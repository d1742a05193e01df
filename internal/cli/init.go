package cli

import "fmt"

// InitCmd creates or upgrades the database schema.
type InitCmd struct{}

func (c *InitCmd) Run(appCtx *Context) error {
	if err := appCtx.Store.Init(); err != nil {
		return err
	}
	defer appCtx.Store.Close()

	fmt.Println("✓ Storage initialized")
	return nil
}
