package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kjsce/kj-connect/internal/adapters/credentials"
)

func runHashSecret(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "hash-secret")
	secret := fs.String("secret", "", "Secret to hash; read from stdin when empty")
	cost := fs.Int("cost", cmdCtx.Config.Auth.BcryptCost, "bcrypt cost")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	value := *secret
	if value == "" {
		line, err := bufio.NewReader(cmdCtx.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read secret: %w", err)
		}
		value = strings.TrimRight(line, "\r\n")
	}
	if value == "" {
		return errors.New("secret cannot be empty")
	}

	hash, err := credentials.HashSecret(value, *cost)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Stdout, "%s\n", hash)
}
