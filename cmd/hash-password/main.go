// Command hash-password prints an argon2id hash suitable for
// KEEPSAKE_ADMIN_PASSWORD_HASH. The password is read from the first argument
// or, when absent, from the first line of stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/keepsake-app/keepsake-backend/pkg/security"
)

func main() {
	flag.Parse()

	password, err := readPassword(flag.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read password: %v\n", err)
		os.Exit(1)
	}

	hash, err := security.HashPassword(password, security.DefaultParams)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readPassword(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("no password given")
	}
	return line, nil
}
