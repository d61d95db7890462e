// Command grindctl runs the CNC surface grinder control core: the
// endstop monitor, motor driver loop, and operation controller, plus the
// optional reference HTTP/JSON operator UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
	cfgpkg "github.com/Alibirb/gogrind/internal/config"
	"github.com/Alibirb/gogrind/internal/endstop"
	"github.com/Alibirb/gogrind/internal/hal"
	"github.com/Alibirb/gogrind/internal/logger"
	"github.com/Alibirb/gogrind/internal/motor"
	"github.com/Alibirb/gogrind/internal/operation"
	"github.com/Alibirb/gogrind/internal/uiapi"
)

func main() {
	runtimeConfigPath := flag.String("config", "", "path to runtime config file (optional)")
	flag.Parse()

	runtimeCfg, err := cfgpkg.LoadRuntimeConfig(*runtimeConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading runtime config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = runtimeCfg.LogLevel
	logCfg.Format = runtimeCfg.LogFormat
	if runtimeCfg.LogFilePath != "" {
		logCfg.LogDir = runtimeCfg.LogFilePath
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	machineCfg, err := cfgpkg.LoadMachineConfig(runtimeCfg.MachineConfigPath)
	if err != nil {
		log.Warn("falling back to default machine config", zap.Error(err))
		machineCfg = axis.Default()
	}
	if runtimeCfg.GPIOChipOverride != "" {
		machineCfg.GPIOChip = runtimeCfg.GPIOChipOverride
	}
	if err := machineCfg.Validate(); err != nil {
		log.Fatal("invalid machine config", zap.Error(err))
	}
	if err := cfgpkg.SaveMachineConfig(runtimeCfg.MachineConfigPath, machineCfg); err != nil {
		log.Warn("failed to canonicalize machine config on disk", zap.Error(err))
	}

	motorGPIO, err := hal.NewGpiocdevGPIO(machineCfg.GPIOChip)
	if err != nil {
		log.Fatal("failed to open GPIO chip for motor control", zap.Error(err))
	}
	endstopGPIO, err := hal.NewGpiocdevGPIO(machineCfg.GPIOChip)
	if err != nil {
		log.Fatal("failed to open GPIO chip for endstop monitor", zap.Error(err))
	}

	// Three channels wire the star topology: the operation controller's
	// inbound channel (fed by the endstop monitor, the motor loop, and the
	// UI), the motor loop's inbound channel (fed by the endstop monitor and
	// the operation controller), and a UI-only feed of position/endstop
	// events the motor loop and endstop monitor also publish to.
	toOperation, opRecv := bus.NewChannel()
	motorToOperation := toOperation.Clone()
	uiToOperation := toOperation.Clone()

	toMotor, motorRecv := bus.NewChannel()
	endstopToMotor := toMotor.Clone()

	toUIFeed, uiFeedRecv := bus.NewChannel()

	hub := uiapi.NewHub()
	go bridgeToUI(uiFeedRecv, hub)
	logger.SetBroadcaster(func(level, message, source string, fields map[string]interface{}) {
		hub.Broadcast(uiapi.EventLog, map[string]interface{}{
			"level": level, "message": message, "source": source, "fields": fields,
		})
	})

	motorLoop, err := motor.New(motorGPIO, machineCfg, motorRecv, []*bus.Sender{motorToOperation, toUIFeed}, logger.WithComponent("motor"))
	if err != nil {
		log.Fatal("failed to initialize motor loop", zap.Error(err))
	}

	endstopMonitor := endstop.New(endstopGPIO, machineCfg.Endstops, []*bus.Sender{endstopToMotor, toOperation, toUIFeed.Clone()}, logger.WithComponent("endstop"))

	opManager := operation.New(machineCfg, toMotor, opRecv, logger.WithComponent("operation"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := uiapi.NewServer(uiToOperation, hub)

	go func() {
		if err := endstopMonitor.Run(ctx); err != nil {
			log.Fatal("endstop monitor exited", zap.Error(err))
		}
	}()
	go motorLoop.Run(ctx)
	go opManager.Run(ctx)
	go func() {
		if err := server.Listen(runtimeCfg.HTTPAddr); err != nil {
			log.Warn("ui server exited", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")
	cancel()
	_ = server.Shutdown()
}

// bridgeToUI forwards CurrentPosition and EndstopHit messages arriving on
// recv out to the UI hub as events, until the channel disconnects.
func bridgeToUI(recv *bus.Receiver, hub *uiapi.Hub) {
	for {
		state := recv.Drain(func(msg bus.Message) {
			switch m := msg.(type) {
			case bus.CurrentPosition:
				hub.Broadcast(uiapi.EventPosition, map[string]interface{}{
					"x": m.Position.X, "y": m.Position.Y, "z": m.Position.Z,
				})
			case bus.EndstopHit:
				hub.Broadcast(uiapi.EventEndstop, map[string]interface{}{
					"axis": m.Endstop.Axis.String(), "end": m.Endstop.End.String(), "pressed": m.Pressed,
				})
			}
		})
		if state == bus.Disconnected {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}
