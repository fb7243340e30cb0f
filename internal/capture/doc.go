// Package capture records raw thermostat frames to a CBOR stream and reads
// them back.
//
// A capture holds one Record per socket read or write, tagged with a
// direction, the peer address and a per-recorder session UUID. Captures are
// used to replay traffic through the decoder (aprilaire decode) and to
// collect samples from unfamiliar thermostat models.
//
//	rec, err := capture.NewFileRecorder("session.cbor")
//	if err != nil {
//	    return err
//	}
//	defer rec.Close()
//
//	c, _ := client.New(client.Config{Host: host, Recorder: rec})
package capture
