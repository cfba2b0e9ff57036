// Command qms-admin is the operational CLI: migrations, seeding, and tenant
// administration.
package main

import (
	"os"

	"github.com/qmshub/api/cmd/qms-admin/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
