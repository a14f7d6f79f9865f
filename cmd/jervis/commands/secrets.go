package commands

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/jervis/internal/security"
)

// EncryptCmd implements the 'encrypt' command.
type EncryptCmd struct {
	Key  string `required:"" short:"k" placeholder:"FILE" help:"PEM encoded RSA private key"`
	Text string `arg:"" help:"Secret to encrypt, or - for stdin"`
}

func (c *EncryptCmd) Run(g *Global) error {
	kp, err := security.LoadKeyPair(c.Key, security.WithErrors(g.Errors))
	if err != nil {
		return err
	}
	text, err := argOrStdin(c.Text)
	if err != nil {
		return err
	}
	ciphertext, err := kp.Encrypt(text)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.Out, ciphertext)
	return err
}

// DecryptCmd implements the 'decrypt' command.
type DecryptCmd struct {
	Key        string `required:"" short:"k" placeholder:"FILE" help:"PEM encoded RSA private key"`
	Ciphertext string `arg:"" help:"Base64 ciphertext, or - for stdin"`
}

func (c *DecryptCmd) Run(g *Global) error {
	kp, err := security.LoadKeyPair(c.Key, security.WithErrors(g.Errors))
	if err != nil {
		return err
	}
	ciphertext, err := argOrStdin(c.Ciphertext)
	if err != nil {
		return err
	}
	plaintext, err := kp.Decrypt(strings.TrimSpace(ciphertext))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.Out, plaintext)
	return err
}

func argOrStdin(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := readInput(arg)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
