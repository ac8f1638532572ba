// Command posctl is the operator tool for the café POS API: it converts
// order UUIDs to the numbers printed on receipts and back, and migrates
// the database schema.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}
