package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/capture"
	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/config"
	"github.com/muurk/aprilaire/internal/discovery"
	"github.com/muurk/aprilaire/internal/logging"
	"github.com/muurk/aprilaire/internal/protocol"
)

const defaultResponseTimeout = 5 * time.Second

// target is where to connect and how we decided on it.
type target struct {
	Host   string
	Port   int
	Source string // "flag", "config", "last seen", "mdns"
}

func (t target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// resolveStatic picks a target from flags, then preferences, then the most
// recently reached device. It does not touch the network.
func resolveStatic(flagHost string, flagPort int, reg *config.Registry) (target, bool) {
	prefs := reg.Preferences
	pick := func(p int) int {
		switch {
		case flagPort != 0:
			return flagPort
		case p != 0:
			return p
		case prefs.Port != 0:
			return prefs.Port
		}
		return protocol.DefaultPort
	}

	if flagHost != "" {
		return target{Host: flagHost, Port: pick(0), Source: "flag"}, true
	}
	if prefs.Host != "" {
		return target{Host: prefs.Host, Port: pick(0), Source: "config"}, true
	}
	if _, dev := reg.LastSeenDevice(); dev != nil && dev.LastHost != "" {
		return target{Host: dev.LastHost, Port: pick(dev.LastPort), Source: "last seen"}, true
	}
	return target{}, false
}

// resolveTarget applies resolveStatic and falls back to mDNS when asked to,
// or when nothing else is known and auto discovery is enabled.
func resolveTarget(ctx context.Context) (target, error) {
	t, ok := resolveStatic(host, port, registry)
	useMDNS := discover || (!ok && registry.Preferences.AutoDiscover)
	if !useMDNS {
		if !ok {
			return target{}, errors.New("no thermostat host known; pass --host or --discover")
		}
		return t, nil
	}

	scanner := discovery.NewScanner()
	if secs := registry.Preferences.DiscoverTimeout; secs > 0 {
		scanner.Timeout = time.Duration(secs) * time.Second
	}
	dev, err := scanner.WaitForDevice(ctx, "")
	if err != nil {
		return target{}, fmt.Errorf("mDNS discovery failed: %w", err)
	}
	p := dev.Port
	if port != 0 {
		p = port
	}
	return target{Host: dev.IP, Port: p, Source: "mdns"}, nil
}

func responseTimeout() time.Duration {
	if timeout > 0 {
		return timeout
	}
	if t := registry.Preferences.ResponseTimeout; t > 0 {
		return t
	}
	return defaultResponseTimeout
}

// session is a started client plus the plumbing commands share.
type session struct {
	*client.Client
	target    target
	recorder  *capture.Recorder
	connected chan struct{}
	once      sync.Once
	log       *zap.Logger
}

// openSession resolves the target and starts a client. onUpdate may be nil.
func openSession(ctx context.Context, onUpdate func(client.Update)) (*session, error) {
	t, err := resolveTarget(ctx)
	if err != nil {
		return nil, err
	}

	s := &session{
		target:    t,
		connected: make(chan struct{}),
		log:       logging.Named("cli"),
	}

	prefs := registry.Preferences
	cfg := client.Config{
		Host:              t.Host,
		Port:              t.Port,
		ReconnectInterval: prefs.ReconnectInterval,
		RetryInterval:     prefs.RetryInterval,
		OnUpdate: func(u client.Update) {
			if u.IsStatus() {
				if c, _ := u.Fields.Bool(protocol.FieldConnected); c {
					s.once.Do(func() { close(s.connected) })
				}
			}
			if onUpdate != nil {
				onUpdate(u)
			}
		},
	}

	if captureFile != "" {
		rec, err := capture.NewFileRecorder(captureFile)
		if err != nil {
			return nil, err
		}
		s.recorder = rec
		cfg.Recorder = rec
		s.log.Info("Capturing frames", zap.String("file", captureFile), zap.String("session", rec.SessionID()))
	}

	c, err := client.New(cfg)
	if err != nil {
		s.closeRecorder()
		return nil, err
	}
	s.Client = c
	s.log.Info("Connecting", zap.String("address", t.Address()), zap.String("source", t.Source))
	c.Start()
	return s, nil
}

// waitConnected blocks until the first connection is up. On timeout it dials
// once itself so the failure can be classified for the user.
func (s *session) waitConnected(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-s.connected:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	conn, err := net.DialTimeout("tcp", s.target.Address(), d)
	if err != nil {
		return client.ClassifyConnectError(err, s.target.Address())
	}
	_ = conn.Close()
	return fmt.Errorf("connected to %s but the session did not start within %s", s.target.Address(), d)
}

// waitReady waits for the connection and the MAC address the bootstrap
// sequence reads first. Writes queued before that are discarded when the
// queue is reset for the new connection.
func (s *session) waitReady(ctx context.Context) (string, error) {
	wait := responseTimeout()
	// AwaitResponse registers immediately; the bootstrap read is only sent
	// after the settle delay.
	type result struct {
		fields protocol.Fields
		err    error
	}
	macCh := make(chan result, 1)
	go func() {
		f, err := s.AwaitResponse(ctx, protocol.DomainIdentification, protocol.AttrIdentificationMAC, 2*wait+client.DefaultSettleDelay)
		macCh <- result{f, err}
	}()

	if err := s.waitConnected(ctx, wait); err != nil {
		return "", err
	}
	r := <-macCh
	if r.err != nil {
		return "", fmt.Errorf("no MAC address from thermostat: %w", r.err)
	}
	mac, _ := r.fields.Text(protocol.FieldMACAddress)
	return mac, nil
}

// remember records the device in the registry and saves it.
func (s *session) remember(mac string, identity protocol.Fields, revision protocol.Fields) {
	if mac == "" {
		return
	}
	registry.UpdateDeviceLastSeen(mac, s.target.Host, s.target.Port)

	name, _ := identity.Text(protocol.FieldName)
	location, _ := identity.Text(protocol.FieldLocation)
	model, _ := revision.Int(protocol.FieldModelNumber)
	if name != "" || location != "" || model != 0 {
		registry.UpdateDeviceIdentity(mac, name, location, model)
	}

	if err := registry.Save(registryPath); err != nil {
		s.log.Warn("Failed to save config", zap.String("path", registryPath), zap.Error(err))
	}
}

func (s *session) Close() {
	s.Stop()
	s.closeRecorder()
}

func (s *session) closeRecorder() {
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			s.log.Warn("Failed to close capture file", zap.Error(err))
		}
	}
}
