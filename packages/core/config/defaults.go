package config

import (
	"errors"
	"fmt"
	"os"
)

const (
	DefaultPath     = ".apictl.yaml"
	DefaultCacheDir = ".apictl"
)

// ErrConfigExists is returned by WriteExample when it would overwrite a file.
var ErrConfigExists = errors.New("config already exists")

// Example is the starter config written by "apictl init".
const Example = `contexts:
  local:
    base_url: http://localhost:8080
  staging:
    base_url: https://staging.example.com

requests:
  login:
    description: exchange credentials for a token
    url: ${base_url}/login
    method: POST
    body:
      type: form
      data:
        username: ${username}
        password: ${password}
  me:
    description: fetch the current user
    url: ${base_url}/me
    headers:
      Authorization: Bearer ${response.login.token}

tests:
  auth:
    description: a token from login unlocks /me
    steps:
      - name: log in
        request: login
        asserts:
          - type: status_code
            value: 200
          - type: regex
            key: token
            value: ".+"
      - name: current user
        request: me
        asserts:
          - type: status_code
            value: 200
          - type: header_contains
            key: content-type
            value: application/json
`

// WriteExample writes Example to path. An existing file is only replaced
// when force is set.
func WriteExample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	if err := os.WriteFile(path, []byte(Example), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
