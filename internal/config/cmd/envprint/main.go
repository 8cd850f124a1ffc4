// Command envprint loads the configuration from the environment and prints
// the redacted view as indented JSON. Handy for checking what a deployment
// will actually run with, without ever printing the signing secret.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wildermade/storefront-session-helper/internal/config"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "envprint: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "envprint: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(out))
}
