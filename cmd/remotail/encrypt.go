package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"remotail/internal/crypto"
)

func newEncryptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a target password for the settings file",
		Long: fmt.Sprintf("Reads a password without echo and prints the enc: value to paste into the\n"+
			"settings file. The key is taken from %s, or prompted for when it is unset.", crypto.KeyEnv),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompt := newSecretPrompt(cmd)

			cipher := crypto.CipherFromEnv()
			if cipher == nil {
				passphrase, err := prompt.read(fmt.Sprintf("Key (%s is not set): ", crypto.KeyEnv))
				if err != nil {
					return err
				}
				cipher = crypto.NewCipher(passphrase)
			}

			password, err := prompt.read("Password: ")
			if err != nil {
				return err
			}
			sealed, err := cipher.Encrypt(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}
}

// secretPrompt reads secrets without echo from a terminal, or line by line
// from anything else.
type secretPrompt struct {
	in     io.Reader
	lines  *bufio.Reader
	prompt io.Writer
}

func newSecretPrompt(cmd *cobra.Command) *secretPrompt {
	in := cmd.InOrStdin()
	return &secretPrompt{in: in, lines: bufio.NewReader(in), prompt: cmd.ErrOrStderr()}
}

func (p *secretPrompt) read(prompt string) (string, error) {
	fmt.Fprint(p.prompt, prompt)

	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return nonEmpty(string(secret))
	}

	line, err := p.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return nonEmpty(strings.TrimRight(line, "\r\n"))
}

func nonEmpty(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty input")
	}
	return secret, nil
}
