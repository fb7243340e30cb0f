package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/aprilaire/internal/discovery"
	"github.com/muurk/aprilaire/internal/protocol"
	"github.com/muurk/aprilaire/internal/ui"
)

var scanTimeout int

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 10, "Scan timeout in seconds")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for thermostats on the network",
	Long: `Scan for thermostats using mDNS/DNS-SD discovery (` + discovery.ServiceType + `).

Thermostats you have reached before are marked with the name stored in the
config file.`,
	Example: `  # Scan for 10 seconds (default)
  aprilaire scan

  # Quick 3-second scan
  aprilaire scan --scan-timeout 3`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Scanning for thermostats (timeout: %ds)...\n\n", scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second
	devices, err := scanner.ScanForDevices(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printer := ui.NewPrinter(nil)
	if len(devices) == 0 {
		printer.PrintWarning("No thermostats found", map[string]string{
			"Service": discovery.ServiceType,
			"Timeout": scanner.Timeout.String(),
		})
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the thermostat is powered on and joined to Wi-Fi")
		fmt.Println("  - Check that you're on the same network segment")
		fmt.Println("  - Try increasing --scan-timeout")
		fmt.Println("  - Use --host to connect by IP address if discovery fails")
		return nil
	}

	fmt.Printf("Found %d thermostat(s):\n\n", len(devices))
	for i, d := range devices {
		fmt.Printf("%d. %s\n", i+1, d.Instance)
		fmt.Printf("   Address: %s\n", d.Address())
		if d.MAC != "" {
			fmt.Printf("   MAC:     %s\n", d.MAC)
			if known := registry.GetDevice(d.MAC); known != nil && known.Name != "" {
				fmt.Printf("   Known:   %s (%s)\n", known.Name, known.Location)
			}
		}
		if model := d.GetMetadata(discovery.TXTModel); model != "" {
			fmt.Printf("   Model:   %s\n", modelLabel(model))
		}
		fmt.Println()
	}

	fmt.Println("Use 'aprilaire probe --host <ip>' to check a thermostat")
	return nil
}

func modelLabel(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return protocol.ModelName(n)
}
