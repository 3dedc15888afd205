// camscan probes camera indices 0-9 and prints the ones that open.
package main

import (
	"fmt"
	"os"

	"github.com/platewatch/go-platewatch/internal/config"
	"github.com/platewatch/go-platewatch/internal/log"
	"github.com/platewatch/go-platewatch/pkg/capture"
)

func main() {
	log.Init(config.LogLevel())

	backend, err := capture.NewBackend(capture.BackendOpenCV, log.L())
	if err != nil {
		fmt.Printf("❌ Backend init failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("📷 Scanning camera indices 0-9...")
	devices := capture.Scan(backend, log.L())

	if len(devices) == 0 {
		fmt.Println("No cameras found. Check connections and permissions.")
		return
	}

	for _, idx := range devices {
		fmt.Printf("  ✅ device %d\n", idx)
	}
	fmt.Printf("%d camera(s) available\n", len(devices))
}
