// cmd/genhash prints a fresh salt and the PBKDF2 hash of a password, for
// seeding the Users table by hand.
// Usage: genhash <password>
package main

import (
	"fmt"
	"os"

	"tileledger/internal/service"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>")
		os.Exit(2)
	}
	salt, err := service.NewSalt()
	if err != nil {
		panic(err)
	}
	hash, err := service.HashPassword(os.Args[1], salt)
	if err != nil {
		panic(err)
	}
	fmt.Println(salt, hash)
}
