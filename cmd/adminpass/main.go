// Command adminpass prints a bcrypt hash for ADMIN_PASSWORD_HASH.
//
//	go run ./cmd/adminpass -p 'secret'
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/betterwealth/workshop-booking/internal/utils"
)

func main() {
	plain := flag.String("p", "", "password to hash (read from stdin when empty)")
	cost := flag.Int("cost", utils.PasswordCost, "bcrypt cost")
	flag.Parse()

	pw := *plain
	if pw == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "adminpass: no password given")
			os.Exit(2)
		}
		pw = strings.TrimRight(line, "\r\n")
	}

	hash, err := utils.HashPassword(pw, *cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "adminpass:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
