package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"vitehub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type authResponse struct {
	Operator  string `json:"operator"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func main() {
	global := flag.NewFlagSet("vitehub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	grpcAddr := global.String("grpc", "localhost:9090", "gRPC server address")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	rest := []string{}
	if len(args) > 1 {
		sub = args[1]
		rest = args[2:]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "hashpw":
		handleHashPassword(args[1:])
	case "payload":
		handlePayload(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "manifest":
		handleManifest(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "reload":
		handleReload(ctx, client, *baseURL, *tokenPath)
	case "reloads":
		handleReloads(ctx, client, *baseURL, *tokenPath, args[1:])
	case "watch":
		handleWatch(*baseURL, args[1:])
	case "rpc":
		handleRPC(ctx, *grpcAddr, sub, rest)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		operator := fs.String("operator", os.Getenv("USER"), "operator name recorded in the token")
		password := fs.String("password", "", "admin password")
		_ = fs.Parse(args)

		if *operator == "" || *password == "" {
			log.Fatal("operator and password are required")
		}

		payload := map[string]string{"operator": *operator, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/admin/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Printf("logged in as %s (expires %s)\n", resp.Operator, resp.ExpiresAt)
	case "logout":
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: vitehub auth <login|logout>")
	}
}

// handleHashPassword prints a value for VITEHUB_ADMIN_PASSWORD_HASH.
func handleHashPassword(args []string) {
	fs := flag.NewFlagSet("hashpw", flag.ExitOnError)
	password := fs.String("password", "", "password to hash")
	_ = fs.Parse(args)
	if len(*password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash failed: %v", err)
	}
	fmt.Println(string(hash))
}

func handlePayload(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "show":
		fs := flag.NewFlagSet("payload show", flag.ExitOnError)
		entry := fs.String("entry", "", "entry key (defaults to the configured one)")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/admin/payload")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		if *entry != "" {
			u.RawQuery = url.Values{"entry": {*entry}}.Encode()
		}

		var resp models.PayloadDTO
		if err := doJSON(ctx, client, http.MethodGet, u.String(), mustToken(tokenPath), nil, &resp); err != nil {
			log.Fatalf("payload failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: vitehub payload show")
	}
}

func handleManifest(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "list":
		var resp models.EntryListDTO
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/admin/manifest", mustToken(tokenPath), nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "show":
		fs := flag.NewFlagSet("manifest show", flag.ExitOnError)
		key := fs.String("key", "", "manifest key, e.g. src/main.ts")
		_ = fs.Parse(args)
		if *key == "" {
			log.Fatal("key is required")
		}

		var resp models.EntryDTO
		endpoint := baseURL + "/admin/entry/" + escapeKey(*key)
		if err := doJSON(ctx, client, http.MethodGet, endpoint, mustToken(tokenPath), nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "inspect":
		fs := flag.NewFlagSet("manifest inspect", flag.ExitOnError)
		base := fs.String("base", "/", "asset base prefix")
		imports := fs.Bool("imports", false, "include css of imported chunks")
		_ = fs.Parse(args)
		if fs.NArg() == 0 {
			log.Fatal("usage: vitehub manifest inspect [-base /] [-imports] <manifest.json> [key]")
		}

		v, err := inspect(fs.Arg(0), fs.Arg(1), *base, *imports)
		if err != nil {
			log.Fatalf("inspect failed: %v", err)
		}
		printJSON(v)
	default:
		log.Fatal("usage: vitehub manifest <list|show|inspect>")
	}
}

func handleReload(ctx context.Context, client *http.Client, baseURL, tokenPath string) {
	var resp models.ReloadEvent
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/admin/reload", mustToken(tokenPath), nil, &resp); err != nil {
		log.Fatalf("reload failed: %v", err)
	}
	printJSON(resp)
}

func handleReloads(ctx context.Context, client *http.Client, baseURL, tokenPath string, args []string) {
	fs := flag.NewFlagSet("reloads", flag.ExitOnError)
	limit := fs.Int("limit", 20, "max events")
	_ = fs.Parse(args)

	endpoint := fmt.Sprintf("%s/admin/reloads?limit=%d", baseURL, *limit)
	var resp struct {
		Items []models.ReloadEvent `json:"items"`
	}
	if err := doJSON(ctx, client, http.MethodGet, endpoint, mustToken(tokenPath), nil, &resp); err != nil {
		log.Fatalf("reloads failed: %v", err)
	}
	printJSON(resp.Items)
}

func handleWatch(baseURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
	_ = fs.Parse(args)

	endpoint := *wsURL
	if endpoint == "" {
		var err error
		endpoint, err = websocketURL(baseURL, "/ws")
		if err != nil {
			log.Fatalf("ws url: %v", err)
		}
	}
	for {
		if err := runWebSocket(endpoint); err != nil {
			log.Printf("[watch] disconnected: %v", err)
		}
		time.Sleep(1 * time.Second)
	}
}

func runWebSocket(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[watch] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(formatEvent(msg))
	}
}

func printUsage() {
	fmt.Println("vitehub [-api URL] [-grpc ADDR] [-token PATH] <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|logout")
	fmt.Println("  hashpw -password ...")
	fmt.Println("  payload show [-entry KEY]")
	fmt.Println("  manifest list|show -key KEY|inspect <manifest.json> [key]")
	fmt.Println("  reload")
	fmt.Println("  reloads [-limit N]")
	fmt.Println("  watch")
	fmt.Println("  rpc payload|entry|entries")
}
