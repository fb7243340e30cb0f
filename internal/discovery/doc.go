// Package discovery finds Aprilaire thermostats on the local network with
// multicast DNS and advertises simulated ones.
//
// Thermostats are browsed under the "_aprilaire._tcp" service type. The
// simulator registers itself with TXT records carrying its MAC address, name
// and model number so clients can pick a specific device.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 5 * time.Second
//
//	devices, err := scanner.ScanForDevices(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range devices {
//	    fmt.Println(d)
//	}
//
//	// Resolve one device by MAC
//	d, err := scanner.WaitForDevice(ctx, "b4:82:55:50:93:6d")
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
