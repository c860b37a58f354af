// Package main is a utility for generating bcrypt hashes of admin passwords.
// The registry stores only bcrypt hashes of admin passwords, never the raw
// values, so this tool is used when manually seeding or repairing admin
// records in the users table without running the full server.
//
// Usage: hash <password>
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <password>\n", os.Args[0])
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), 12)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(hash))
}
