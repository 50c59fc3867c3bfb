package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Check credentials and print the resulting session",
	Long:  `Prompts for the password (or reads it from stdin) and authenticates it against the admin login and the client records.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password, err := readPassword()
		if err != nil {
			fatal("Failed to read password", err)
		}

		svc := openService()
		session, ok := svc.Authenticate(cmd.Context(), args[0], password)
		if !ok {
			fmt.Fprintln(os.Stderr, "Invalid credentials")
			os.Exit(1)
		}
		printJSON(session)
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password (for PORTAL_ADMIN_PASSWORD_HASH)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		password, err := readPassword()
		if err != nil {
			fatal("Failed to read password", err)
		}
		hash, err := core.HashPassword(password)
		if err != nil {
			fatal("Failed to hash password", err)
		}
		fmt.Println(hash)
	},
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}
