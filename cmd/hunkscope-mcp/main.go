package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ludo-technologies/hunkscope/internal/config"
	"github.com/ludo-technologies/hunkscope/internal/version"
	"github.com/ludo-technologies/hunkscope/mcp"
)

const serverName = "hunkscope"

func main() {
	configPath := flag.String("config", "", "Configuration file (default: .hunkscope.toml searched upwards)")
	flag.Parse()

	// Set up logging to stderr (MCP uses stdout for JSON-RPC)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}
	cfg, err := config.LoadConfig(*configPath, cwd)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	mcp.RegisterTools(server, mcp.NewHandlerSet(mcp.NewDependencies(cfg)))

	log.Printf("Starting %s MCP server %s\n", serverName, version.Short())
	log.Println("Registered tools:")
	log.Println("  - score_defect: Divergence of one defect")
	log.Println("  - classify_dataset: Proximity class of every defect")
	log.Println("  - analyze_dataset: Divergence summary per proximity class")
	log.Println("")
	log.Println("Server ready - waiting for MCP client connection...")

	// Blocks until the server is terminated
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
