package main

import (
	"flag"
	"fmt"
	"os"

	"launchcontrol/pkg/vault"
)

// Generates a vault operator keypair and stores it encrypted in the keystore
// directory. The printed address goes into VAULT_OPERATOR_ADDRESS.
func main() {
	password := flag.String("password", "", "keystore password (required)")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: genkey -password <keystore password>")
		os.Exit(1)
	}

	ks := vault.NewOperatorKeystore()
	account, err := ks.GenerateOperator()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate operator key:", err)
		os.Exit(1)
	}
	if err := ks.Save(account, *password); err != nil {
		fmt.Fprintln(os.Stderr, "save operator key:", err)
		os.Exit(1)
	}

	fmt.Println("operator address:", account.PublicKey.ToBase58())
}
