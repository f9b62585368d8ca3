// Command hash-generator produces the bcrypt hash for an API key so it
// can be placed in the WEEKI_AUTH_API_KEY_HASH configuration value.
package main

import (
	"fmt"
	"os"

	"github.com/phrazzld/weeki-api/internal/service/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <api-key>\n", os.Args[0])
		os.Exit(2)
	}

	hash, err := auth.HashAPIKey(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
