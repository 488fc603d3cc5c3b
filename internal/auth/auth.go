// Package auth finds the Gemini API key and classifies failures to use it.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".media-rename"
	credentialFile = "credentials.gpg"
	passphraseFile = "passphrase"
)

// errNoSource marks a key source that is simply not configured.
var errNoSource = errors.New("not configured")

// keySource is one place an API key may come from.
type keySource struct {
	name string
	get  func() (string, error)
}

// GetAPIKey returns the first key found in, in order: explicit (a value
// from flags or the config file), GEMINI_API_KEY, and the GPG-encrypted
// file ~/.media-rename/credentials.gpg.
func GetAPIKey(explicit ...string) (string, error) {
	sources := []keySource{
		{"configuration", func() (string, error) { return firstNonBlank(explicit...), nil }},
		{"environment", func() (string, error) { return os.Getenv("GEMINI_API_KEY"), nil }},
		{"gpg", getFromGPG},
	}

	var lastErr error
	for _, src := range sources {
		key, err := src.get()
		key = strings.TrimSpace(key)
		if err == nil && key != "" {
			log.Debug().Str("source", src.name).Msg("API key found")
			return key, nil
		}
		if err != nil && !errors.Is(err, errNoSource) {
			log.Warn().Err(err).Str("source", src.name).Msg("API key source unreadable")
			lastErr = err
		}
	}

	return "", &ValidationError{
		Type:    ErrTypeNoKey,
		Message: "API key not found. Set GEMINI_API_KEY, api-key in the config file, or store it GPG-encrypted at ~/" + credentialDir + "/" + credentialFile,
		Err:     lastErr,
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// getFromGPG decrypts the credentials file with gpg. A passphrase file next
// to it, readable only by its owner, enables non-interactive decryption.
func getFromGPG() (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(credPath); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", credPath, errNoSource)
	}

	args := []string{"--decrypt", "--quiet"}
	if pass, ok := passphraseArgs(filepath.Join(filepath.Dir(credPath), passphraseFile)); ok {
		args = append(args, pass...)
	}
	args = append(args, credPath)

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")
	output, err := exec.Command("gpg", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}
	return string(output), nil
}

// passphraseArgs returns the loopback pinentry arguments for path when it
// exists with owner-only permissions.
func passphraseArgs(path string) ([]string, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if mode := fi.Mode().Perm(); mode&0o077 != 0 {
		log.Warn().
			Str("passphrase_file", path).
			Str("permissions", fmt.Sprintf("%04o", mode)).
			Msg("Passphrase file has insecure permissions (should be 0600); skipping")
		return nil, false
	}
	return []string{"--pinentry-mode", "loopback", "--passphrase-file", path}, true
}

// getCredentialPath returns the full path to the credentials file.
func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir, credentialFile), nil
}
