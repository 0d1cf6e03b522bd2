package main

import (
	"fmt"
	"os"

	"github.com/TEENet-io/escrow-go/cmd"
	"github.com/TEENet-io/escrow-go/logconfig"
)

func main() {
	// Tool to read .env, environment variables and the optional config file.
	v, err := cmd.LoadConfig(cmd.ENV_DOTENV_FILE_PATH)
	if err != nil {
		fmt.Printf("Error loading escrow server configuration: %s\n", err)
		os.Exit(1)
	}

	logconfig.ConfigLogger(v.GetString("LOG_LEVEL"))

	// Make the configuration
	esc := cmd.PrepareEscrowServerConfig(v)
	if esc.HttpPort == "" {
		esc.HttpPort = "8080"
	}

	fmt.Println("Starting escrow server... press Ctrl+C to kill the server")
	// Start server and block.
	cmd.StartEscrowServerAndWait(esc)
}
