package banner

import (
	"fmt"

	"ridepool/pkg/config"
)

const banner = `
██████╗ ██╗██████╗ ███████╗██████╗  ██████╗  ██████╗ ██╗
██╔══██╗██║██╔══██╗██╔════╝██╔══██╗██╔═══██╗██╔═══██╗██║
██████╔╝██║██║  ██║█████╗  ██████╔╝██║   ██║██║   ██║██║
██╔══██╗██║██║  ██║██╔══╝  ██╔═══╝ ██║   ██║██║   ██║██║
██║  ██║██║██████╔╝███████╗██║     ╚██████╔╝╚██████╔╝███████╗
╚═╝  ╚═╝╚═╝╚═════╝ ╚══════╝╚═╝      ╚═════╝  ╚═════╝ ╚══════╝
`

// Print writes the startup banner with the effective runtime settings.
func Print(cfg *config.Config, addr, dbPath, sources, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Config sources: %s\n", sources)
	}
	if cfg != nil {
		if cfg.Retention.Enabled {
			cron := cfg.Retention.Cron
			if cron == "" {
				cron = "0 2 * * *"
			}
			fmt.Printf("Sweep:    enabled (cron=%s)\n", cron)
		} else {
			fmt.Println("Sweep:    lazy only (read-triggered)")
		}
		if cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
			fmt.Println("TLS:      configured")
		} else {
			fmt.Println("TLS:      unconfigured")
		}
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/profiles               - Create or replace a rider profile")
	fmt.Println("POST /v1/chats                  - Create a trip chat (external matching flow)")
	fmt.Println("GET  /v1/users/{id}/chats       - List valid chats; expired ones are evicted")
	fmt.Println("POST /v1/chats/{id}/messages    - Send a message")
	fmt.Println("GET  /v1/chats/{id}/messages    - List a chat's messages")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/chats' -d '{\"id\":\"c1\",\"userId\":\"u1\",\"pickupTime\":\"2026-09-01T08:00:00Z\"}'\n", addr)
	fmt.Printf("curl 'http://localhost%s/v1/users/u1/chats'\n", addr)
}
