package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"

	"safepump/crypto"
	"safepump/native/asset"
	"safepump/native/common"
	"safepump/rpc"
)

const defaultKeyFile = "authority.key"

var rpcEndpoint = defaultRPCEndpoint()

func main() {
	args, err := applyGlobalFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(args) < 1 {
		printUsage()
		return
	}

	switch args[0] {
	case "generate-key":
		path := defaultKeyFile
		if len(args) > 1 {
			path = args[1]
		}
		err = generateKey(path)
	case "sign-swap", "swap":
		if len(args) < 7 {
			fmt.Println("Error: swap needs <key_file> <mint> <user> <buy|sell> <amount> <nonce> [min_out].")
			printUsage()
			return
		}
		var payload rpc.SwapRequest
		payload, err = signSwap(args[1:])
		if err != nil {
			break
		}
		if args[0] == "sign-swap" {
			err = printJSON(payload)
			break
		}
		err = post("/v1/swap", payload)
	case "sign-launch", "launch":
		if len(args) < 9 {
			fmt.Println("Error: launch needs <keypair_file> <mint> <total_supply> <burn_percent> <lp_percent> <deployer_amount> <sell_cooldown> <top_tier_sol>.")
			printUsage()
			return
		}
		var payload rpc.LaunchRequest
		payload, err = signLaunch(args[1:])
		if err != nil {
			break
		}
		if args[0] == "sign-launch" {
			err = printJSON(payload)
			break
		}
		err = post("/v1/assets", payload)
	case "nonce":
		if len(args) < 2 {
			fmt.Println("Error: Please provide a user address.")
			printUsage()
			return
		}
		err = get("/v1/vaults/" + args[1])
	case "events":
		path := "/v1/events"
		if len(args) > 1 {
			path += "?type=" + args[1]
		}
		err = get(path)
	default:
		printUsage()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultRPCEndpoint() string {
	if v := strings.TrimSpace(os.Getenv("SAFEPUMP_RPC_URL")); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func applyGlobalFlags(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--rpc" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --rpc")
			}
			rpcEndpoint = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--rpc=") {
			rpcEndpoint = strings.TrimPrefix(arg, "--rpc=")
			continue
		}
		out = append(out, arg)
	}
	return out, nil
}

func generateKey(path string) error {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, key.Bytes(), 0o600); err != nil {
		return fmt.Errorf("save key to %s: %w", path, err)
	}
	fmt.Printf("Generated new authority key and saved to %s\n", path)
	fmt.Printf("Authority public key: %s\n", key.PubKey())
	return nil
}

func loadPrivateKey(path string) (*crypto.PrivateKey, error) {
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("key file %s not found. run safepump-cli generate-key first", path)
		}
		return nil, fmt.Errorf("read key file %s: %w", path, err)
	}
	key, err := crypto.PrivateKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse key in %s: %w", path, err)
	}
	return key, nil
}

// signSwap builds a signed request from
// <key_file> <mint> <user> <buy|sell> <amount> <nonce> [min_out].
func signSwap(args []string) (rpc.SwapRequest, error) {
	key, err := loadPrivateKey(args[0])
	if err != nil {
		return rpc.SwapRequest{}, err
	}
	mint, err := crypto.ParseAddress(args[1])
	if err != nil {
		return rpc.SwapRequest{}, fmt.Errorf("mint: %w", err)
	}
	user, err := crypto.ParseAddress(args[2])
	if err != nil {
		return rpc.SwapRequest{}, fmt.Errorf("user: %w", err)
	}
	var dir common.Direction
	switch strings.ToLower(args[3]) {
	case "buy":
		dir = common.DirectionBuy
	case "sell":
		dir = common.DirectionSell
	default:
		return rpc.SwapRequest{}, fmt.Errorf("direction must be buy or sell")
	}
	amount, err := strconv.ParseUint(args[4], 10, 64)
	if err != nil {
		return rpc.SwapRequest{}, fmt.Errorf("amount: %w", err)
	}
	nonce, err := strconv.ParseUint(args[5], 10, 64)
	if err != nil {
		return rpc.SwapRequest{}, fmt.Errorf("nonce: %w", err)
	}
	var minOut uint64
	if len(args) > 6 {
		if minOut, err = strconv.ParseUint(args[6], 10, 64); err != nil {
			return rpc.SwapRequest{}, fmt.Errorf("min_out: %w", err)
		}
	}

	req := asset.Request{
		Mint:       mint,
		User:       user,
		Direction:  dir,
		Amount:     amount,
		MinimumOut: minOut,
		Nonce:      nonce,
		Authority:  key.PubKey(),
	}
	sig, err := key.Sign(req.Message().Bytes())
	if err != nil {
		return rpc.SwapRequest{}, err
	}
	return rpc.SwapRequest{
		Mint:       mint.String(),
		User:       user.String(),
		Direction:  dir.String(),
		Amount:     amount,
		MinimumOut: minOut,
		Nonce:      nonce,
		Signature:  sig,
		Authority:  req.Authority,
	}, nil
}

// signLaunch builds a deployer-signed launch from <keypair_file> <mint>
// <total_supply> <burn_percent> <lp_percent> <deployer_amount>
// <sell_cooldown> <top_tier_sol>. The keypair file uses the solana-keygen
// JSON format.
func signLaunch(args []string) (rpc.LaunchRequest, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(args[0])
	if err != nil {
		return rpc.LaunchRequest{}, fmt.Errorf("read keypair %s: %w", args[0], err)
	}
	numbers := make([]uint64, 0, 6)
	for i, name := range []string{"total_supply", "burn_percent", "lp_percent", "deployer_amount", "sell_cooldown", "top_tier_sol"} {
		v, err := strconv.ParseUint(args[i+2], 10, 64)
		if err != nil {
			return rpc.LaunchRequest{}, fmt.Errorf("%s: %w", name, err)
		}
		numbers = append(numbers, v)
	}
	payload := rpc.LaunchRequest{
		Mint:                args[1],
		Deployer:            key.PublicKey().String(),
		TotalSupply:         numbers[0],
		BurnPercent:         numbers[1],
		LPPercent:           numbers[2],
		DeployerAmount:      numbers[3],
		MaxBuyBps:           common.BpsDenominator,
		MaxSellBps:          common.BpsDenominator,
		SellCooldown:        numbers[4],
		TopTierValuationSOL: numbers[5],
	}
	mint, err := crypto.ParseAddress(payload.Mint)
	if err != nil {
		return rpc.LaunchRequest{}, fmt.Errorf("mint: %w", err)
	}
	lp := asset.LaunchParams{
		Mint:                mint,
		Deployer:            key.PublicKey(),
		TotalSupply:         payload.TotalSupply,
		BurnPercent:         payload.BurnPercent,
		LPPercent:           payload.LPPercent,
		DeployerAmount:      payload.DeployerAmount,
		MaxBuyBps:           payload.MaxBuyBps,
		MaxSellBps:          payload.MaxSellBps,
		SellCooldown:        payload.SellCooldown,
		TopTierValuationSOL: payload.TopTierValuationSOL,
	}
	if payload.Signature, err = key.Sign(lp.Message().Bytes()); err != nil {
		return rpc.LaunchRequest{}, err
	}
	return payload, nil
}

var client = &http.Client{Timeout: 15 * time.Second}

func post(path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := client.Post(strings.TrimRight(rpcEndpoint, "/")+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func get(path string) error {
	resp, err := client.Get(strings.TrimRight(rpcEndpoint, "/") + path)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var decoded rpc.Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("unexpected %s response: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	if decoded.Error != nil {
		return fmt.Errorf("%s (%s): %s", resp.Status, decoded.Error.Code, decoded.Error.Message)
	}
	return printJSON(decoded.Result)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printUsage() {
	fmt.Println("Usage: safepump-cli [--rpc URL] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  generate-key [key_file]                                   - Generates a swap authority key")
	fmt.Println("  sign-swap <key_file> <mint> <user> <buy|sell> <amount> <nonce> [min_out] - Prints a signed swap request")
	fmt.Println("  swap <key_file> <mint> <user> <buy|sell> <amount> <nonce> [min_out]      - Signs and submits a swap")
	fmt.Println("  sign-launch <keypair_file> <mint> <total_supply> <burn_percent> <lp_percent> <deployer_amount> <sell_cooldown> <top_tier_sol> - Prints a deployer-signed launch")
	fmt.Println("  launch <keypair_file> <mint> <total_supply> <burn_percent> <lp_percent> <deployer_amount> <sell_cooldown> <top_tier_sol>      - Signs and submits a launch")
	fmt.Println("  nonce <user>                                              - Shows the vault nonce of a user")
	fmt.Println("  events [type]                                             - Lists recent journaled events")
}
