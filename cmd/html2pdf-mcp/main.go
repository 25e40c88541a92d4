package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("HTML2PDF_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3005"
	}

	s := server.NewMCPServer(
		"html2pdf",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	c := newAPIClient(apiURL)
	s.AddTool(convertTool(), handleConvert(c))
	s.AddTool(healthTool(), handleHealth(c))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
