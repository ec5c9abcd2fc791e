package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Checks that the configured credentials are accepted by the portal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := login(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", account.Username(), account.State())
		return nil
	},
}
