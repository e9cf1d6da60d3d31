// Package session reads the persisted bearer credential used to authorize
// API calls. The token is written by the login flow of the web client; this
// client only consumes it.
package session

import (
	"fmt"
	"os"
	"strings"
)

// Token loads the bearer credential from path.
func Token(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("session token %s is empty", path)
	}
	return token, nil
}
