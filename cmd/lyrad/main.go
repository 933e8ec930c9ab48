// lyrad - userspace input daemon for the Luckfox Lyra I2C keyboard.
//
// The daemon polls the keyboard controller over i2c-dev, translates its
// register state into key, pointer and power-button events, and injects
// them through two virtual uinput devices. A unix socket exposes the
// runtime tunables (mouse speed, poll interval) to lyractl.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lyrad/internal/config"
	"lyrad/internal/driver"
	"lyrad/internal/ipc"
	"lyrad/internal/logging"
	"lyrad/internal/metrics"
	"lyrad/internal/register"
	"lyrad/internal/suspend"
	"lyrad/internal/uinput"
)

// Version is stamped by the build.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lyrad: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.DefaultPath(), "Path to config file")
	bus := flag.String("bus", "", "I2C bus device (overrides config)")
	addr := flag.Int("addr", 0, "I2C slave address (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("lyrad %s\n", Version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *bus != "" {
		cfg.Device.Bus = *bus
	}
	if *addr != 0 {
		cfg.Device.Addr = *addr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return err
	}
	log := logging.New(&logging.Config{
		Level:     level,
		Format:    format,
		Output:    cfg.Logging.Output,
		Component: "lyrad",
	})
	logging.SetDefault(log)

	log.Info("starting", "version", Version, "bus", cfg.Device.Bus,
		"addr", fmt.Sprintf("0x%02x", cfg.Device.Addr))

	port, err := register.OpenI2C(cfg.Device.Bus, uint16(cfg.Device.Addr))
	if err != nil {
		return fmt.Errorf("open i2c device: %w", err)
	}
	defer port.Close()

	keyboard, err := uinput.NewKeyboard(logging.WithComponent(log, "uinput"))
	if err != nil {
		return fmt.Errorf("create virtual keyboard: %w", err)
	}
	defer keyboard.Close()

	mouse, err := uinput.NewMouse(logging.WithComponent(log, "uinput"))
	if err != nil {
		return fmt.Errorf("create virtual mouse: %w", err)
	}
	defer mouse.Close()

	dev := driver.New(port, keyboard, mouse, cfg, logging.WithComponent(log, "driver"))
	if err := dev.Start(); err != nil {
		return fmt.Errorf("start driver: %w", err)
	}
	defer dev.Stop()

	stopWatch, err := config.Watch(*configPath, cfg, logging.WithComponent(log, "config"))
	if err != nil {
		log.Warn("config watcher unavailable", "error", err)
	} else {
		defer stopWatch()
	}

	srv := ipc.NewServer(cfg.IPC.Socket, Version, cfg, dev.Running,
		logging.WithComponent(log, "ipc"))
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start ipc server: %w", err)
	}
	defer srv.Stop()

	if cfg.Metrics.Enabled {
		ms := metrics.NewServer(cfg.Metrics.Listen, logging.WithComponent(log, "metrics"))
		ms.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			ms.Stop(ctx)
		}()
	}

	sleepWatcher := suspend.NewWatcher(suspend.Hooks{
		OnSleep: dev.Stop,
		OnWake: func() {
			if err := dev.Start(); err != nil && err != driver.ErrAlreadyRunning {
				log.Error("restart after resume failed", "error", err)
			}
		},
	}, logging.WithComponent(log, "suspend"))
	if err := sleepWatcher.Start(); err != nil {
		log.Warn("suspend watcher unavailable, polling continues across sleep", "error", err)
	} else {
		defer sleepWatcher.Stop()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	log.Info("shutting down", "signal", sig.String())
	return nil
}
