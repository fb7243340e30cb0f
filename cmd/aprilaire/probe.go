package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/protocol"
	"github.com/muurk/aprilaire/internal/ui"
)

func init() {
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that a thermostat is reachable",
	Long: `Connect to a thermostat, wait for it to report its MAC address and
read its name and revision.

The thermostat is remembered in the config file so later commands can
connect without --host. Exits non-zero if the thermostat does not answer.`,
	Example: `  # Probe a thermostat by address
  aprilaire probe --host 192.168.1.50

  # Find the thermostat over mDNS first
  aprilaire probe --discover

  # Allow a slow network more time
  aprilaire probe --host 192.168.1.50 --timeout 15s`,
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printer := ui.NewPrinter(nil)
	progress := ui.NewProgress("Probing thermostat...",
		"Connect",
		"Read MAC address",
		"Read name and location",
		"Read revision",
	)

	s, err := openSession(ctx, nil)
	if err != nil {
		printer.PrintError("Probe failed", err, "")
		return err
	}
	defer s.Close()

	printer.PrintHeader("Connectivity Probe", "aprilaire "+strings.Join(os.Args[1:], " "), map[string]string{
		"Thermostat": s.target.Address(),
		"Source":     s.target.Source,
		"Timeout":    responseTimeout().String(),
	})

	fail := func(step int, err error) error {
		progress.FailStep(step, err.Error())
		printer.PrintProgress(progress)
		printer.PrintError("Thermostat did not answer", err, client.TroubleshootingHint(err))
		return err
	}

	progress.StartStep(1, "")
	mac, err := s.waitReady(ctx)
	if err != nil {
		var ce *client.ConnectError
		if errors.As(err, &ce) {
			return fail(1, err)
		}
		progress.CompleteStep(1, "")
		return fail(2, err)
	}
	progress.CompleteStep(1, "")
	progress.CompleteStep(2, mac)

	identity, err := s.AwaitResponse(ctx, protocol.DomainIdentification, protocol.AttrIdentificationName, responseTimeout())
	if err != nil {
		progress.SkipStep(3, err.Error())
	} else {
		name, _ := identity.Text(protocol.FieldName)
		progress.CompleteStep(3, name)
	}

	revision, err := s.Request(ctx, protocol.ReadRevision(), responseTimeout())
	if err != nil {
		progress.SkipStep(4, err.Error())
	} else {
		model, _ := revision.Int(protocol.FieldModelNumber)
		progress.CompleteStep(4, protocol.ModelName(model))
	}

	s.remember(mac, identity, revision)
	printer.PrintProgress(progress)

	details := map[string]string{
		"Address":     s.target.Address(),
		"MAC address": mac,
	}
	if name, ok := identity.Text(protocol.FieldName); ok {
		details["Name"] = name
	}
	if location, ok := identity.Text(protocol.FieldLocation); ok {
		details["Location"] = location
	}
	if model, ok := revision.Int(protocol.FieldModelNumber); ok {
		details["Model"] = protocol.ModelName(model)
	}
	if major, ok := revision.Int(protocol.FieldFirmwareMajorRevision); ok {
		minor, _ := revision.Int(protocol.FieldFirmwareMinorRevision)
		details["Firmware"] = strconv.Itoa(major) + "." + strconv.Itoa(minor)
	}
	printer.PrintSuccess("Thermostat reachable", details)

	fmt.Printf("Saved to %s\n", registryPath)
	return nil
}
