package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/TEENet-io/escrow-go/cmd"
	"github.com/TEENet-io/escrow-go/logconfig"
	"github.com/TEENet-io/escrow-go/reporter"
)

func main() {
	v, err := cmd.LoadConfig(cmd.ENV_DOTENV_FILE_PATH)
	if err != nil {
		fmt.Printf("Error loading configuration: %s\n", err)
		return
	}
	logconfig.ConfigLogger(v.GetString("LOG_LEVEL"))

	euc := &cmd.EscrowUserConfig{
		RpcUrl:              v.GetString("RPC_URL"),
		PrivateKey:          v.GetString("USER_PRIVATE_KEY"),
		UsdcContractAddress: v.GetString("USDC_AMOY_CONTRACT_ADDRESS"),
		SourceRpcUrl:        v.GetString("SOURCE_RPC_URL"),
		SourceChainId:       v.GetString("SOURCE_CHAIN_ID"),
		SourceUsdcAddr:      v.GetString("SOURCE_USDC_ADDRESS"),
	}

	// Create a cancelable context and signal handler for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eu, err := cmd.NewEscrowUser(ctx, euc)
	if err != nil {
		fmt.Printf("Error creating escrow user: %s\n", err)
		return
	}
	defer eu.Close()

	// finalization goes through a running escrow server, if any
	var server *reporter.HttpReader
	if port := v.GetString("HTTP_PORT"); port != "" {
		host := v.GetString("HTTP_IP")
		if host == "" || host == "0.0.0.0" {
			host = "127.0.0.1"
		}
		server = reporter.NewHttpReader(host, port)
	}

	fmt.Println(strings.Repeat("=", 30))
	fmt.Println("Welcome to escrow user command line tool.")
	fmt.Printf("Connected to: %s\n", euc.RpcUrl)
	fmt.Printf("Your address: %s\n", eu.GetAddress())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		_captured := <-sig
		fmt.Printf("\nReceived interrupt signal, shutting down... %v\n", _captured)
		cancel()
		os.Exit(0)
	}()

	// gather user inputs
	scanner := bufio.NewScanner(os.Stdin)
	ask := func(prompt string) string {
		fmt.Print(prompt)
		scanner.Scan()
		return strings.TrimSpace(scanner.Text())
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Print options
		fmt.Println("What to do:")
		fmt.Println("1) View USDC balance")
		fmt.Println("2) Escrow status")
		fmt.Println("3) Deposit into escrow")
		fmt.Println("4) Approve release")
		fmt.Println("5) Approve refund")
		fmt.Println("6) Burn on source chain")
		fmt.Println("7) Finalize a burn (via server)")
		fmt.Print("Type option and press Enter: ")

		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "1":
			balance, err := eu.GetUsdcBalance(ctx)
			if err != nil {
				fmt.Printf("Error getting balance: %s\n", err)
			} else {
				fmt.Printf("Your balance: %s USDC\n", balance.String())
			}
		case "2":
			st, err := eu.Status(ctx, ask("Escrow contract address: "))
			if err != nil {
				fmt.Printf("Error reading status: %s\n", err)
			} else {
				fmt.Printf("Stage: %s, amount: %s, balance: %s\n", st.Stage, cmd.FormatUnits(st.Amount), cmd.FormatUnits(st.Balance))
				fmt.Printf("Depositor: %s\nBeneficiary: %s\n", st.Depositor.Hex(), st.Beneficiary.Hex())
			}
		case "3":
			res, err := eu.Deposit(ctx, ask("Escrow contract address: "))
			if err != nil {
				fmt.Printf("Error depositing: %s\n", err)
			} else {
				fmt.Printf("Deposit sent, tx_id: %s\n", res.DepositTxHash.Hex())
			}
		case "4":
			tx, err := eu.ApproveRelease(ctx, ask("Escrow contract address: "))
			if err != nil {
				fmt.Printf("Error approving release: %s\n", err)
			} else {
				fmt.Printf("Release approved, tx_id: %s\n", tx.Hex())
			}
		case "5":
			tx, err := eu.ApproveRefund(ctx, ask("Escrow contract address: "))
			if err != nil {
				fmt.Printf("Error approving refund: %s\n", err)
			} else {
				fmt.Printf("Refund approved, tx_id: %s\n", tx.Hex())
			}
		case "6":
			contract := ask("Escrow contract address (mint recipient): ")
			amount := ask("Amount (USDC): ")
			req, err := eu.Burn(ctx, contract, amount)
			if err != nil {
				fmt.Printf("Error burning: %s\n", err)
			} else {
				fmt.Printf("Burn sent, tx_id: %s\n", req.SourceTxHash.Hex())
			}
		case "7":
			if server == nil {
				fmt.Println("HTTP_PORT is not set, no server to finalize with.")
				break
			}
			mintTx, err := server.Finalize(ctx, ask("Burn tx hash: "), ask("Expected mint recipient (optional): "))
			if err != nil {
				fmt.Printf("Error finalizing: %s\n", err)
			} else {
				fmt.Printf("Finalized, mint tx: %s\n", mintTx)
			}
		default:
			fmt.Println("Unknown option, try again.")
		}
		fmt.Println()
	}
}
