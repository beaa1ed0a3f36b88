// Command panel-buttons polls three GPIO push buttons (up, down, select),
// turns the raw levels into debounced press/hold/repeat events, drives the
// panel menu from them, and publishes every event to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/panel-buttons/internal/button"
	"github.com/sweeney/panel-buttons/internal/gpio"
	"github.com/sweeney/panel-buttons/internal/menu"
	"github.com/sweeney/panel-buttons/internal/mqtt"
	"github.com/sweeney/panel-buttons/internal/status"
	"github.com/sweeney/panel-buttons/internal/web"
)

// Button labels, in the same order as the configured pins.
const (
	labelUp     = "up"
	labelDown   = "down"
	labelSelect = "select"
)

func main() {
	poll := flag.Duration("poll", time.Millisecond, "GPIO polling interval")
	debounce := flag.Duration("debounce", button.DefaultDebounce, "Debounce window after an edge")
	longPress := flag.Duration("long-press", button.DefaultLongPress, "Hold duration before long press fires")
	repeatStart := flag.Duration("repeat-start", button.DefaultRepeatStart, "Initial interval between hold repeats")
	repeatMin := flag.Duration("repeat-min", button.DefaultRepeatMin, "Fastest interval between hold repeats")
	accel := flag.Duration("accel", button.DefaultAccel, "Repeat interval reduction per second of hold")
	inverted := flag.Bool("inverted", false, "Invert sampled levels (for active-high wiring)")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	pinUp := flag.Int("pin-up", gpio.DefaultPinUp, "BCM pin number for the Up button")
	pinDown := flag.Int("pin-down", gpio.DefaultPinDown, "BCM pin number for the Down button")
	pinSelect := flag.Int("pin-select", gpio.DefaultPinSelect, "BCM pin number for the Select button")
	printState := flag.Bool("print-state", false, "Print current levels and exit")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")

	flag.Parse()

	cfg := button.Config{
		Debounce:    *debounce,
		LongPress:   *longPress,
		RepeatStart: *repeatStart,
		RepeatMin:   *repeatMin,
		Accel:       *accel,
		Inverted:    *inverted,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid button config: %v", err)
	}

	pins := []int{*pinUp, *pinDown, *pinSelect}
	if err := run(*poll, cfg, *broker, *heartbeat, pins, *printState, *httpAddr); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(poll time.Duration, cfg button.Config, broker string, heartbeat time.Duration, pins []int, printState bool, httpAddr string) error {
	// Initialize GPIO
	reader, err := gpio.NewRealReader(pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	// Print state mode
	if printState {
		levels, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		labels := []string{labelUp, labelDown, labelSelect}
		for i, l := range levels {
			fmt.Printf("%s: %s\n", labels[i], levelString(l))
		}
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:        poll.Milliseconds(),
		DebounceMs:    cfg.Debounce.Milliseconds(),
		LongPressMs:   cfg.LongPress.Milliseconds(),
		RepeatStartMs: cfg.RepeatStart.Milliseconds(),
		RepeatMinMs:   cfg.RepeatMin.Milliseconds(),
		AccelMs:       cfg.Accel.Milliseconds(),
		HeartbeatMs:   heartbeat.Milliseconds(),
		Broker:        broker,
		HTTPPort:      httpAddr,
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: poll=%v debounce=%v long-press=%v repeat=%v..%v broker=%s heartbeat=%v",
		poll, cfg.Debounce, cfg.LongPress, cfg.RepeatStart, cfg.RepeatMin, broker, heartbeat)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	buttons := newButtons(cfg)
	ctl := menu.New(defaultFields())

	return runLoop(reader, publisher, publisher, tracker, buttons, ctl, heartbeat, time.Now, ticker.C, sigCh)
}

// newButtons creates the three panel buttons in pin order: up, down, select.
func newButtons(cfg button.Config) []*button.Button {
	mk := func(label string) *button.Button {
		c := cfg
		c.Label = label
		return button.New(c)
	}
	return []*button.Button{mk(labelUp), mk(labelDown), mk(labelSelect)}
}

// defaultFields is the menu shown on the panel.
func defaultFields() []menu.Field {
	return []menu.Field{
		{Name: "brightness", Min: 0, Max: 100, Step: 1, Value: 50},
		{Name: "volume", Min: 0, Max: 30, Step: 1, Value: 10},
		{Name: "timeout_s", Min: 0, Max: 600, Step: 5, Value: 60},
	}
}

func runLoop(reader gpio.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, buttons []*button.Button, ctl *menu.Controller, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	up, down, sel := buttons[0], buttons[1], buttons[2]
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			levels, err := reader.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}
			if len(levels) < len(buttons) {
				log.Printf("gpio read returned %d levels, want %d", len(levels), len(buttons))
				continue
			}

			// One pass: every machine sees the same sampling instant.
			for i, b := range buttons {
				b.Tick(t, levels[i])
			}

			ctl.Apply(menu.Inputs{
				UpPressed:         up.ShortPressed(),
				UpRepeating:       up.Repeating(),
				DownPressed:       down.ShortPressed(),
				DownRepeating:     down.Repeating(),
				SelectPressed:     sel.ShortPressed(),
				SelectLongPressed: sel.LongPressed(),
			})

			for _, b := range buttons {
				for _, event := range b.FiredEvents(t) {
					log.Printf("event: %s %s (phase=%s)", event.Label, event.Kind, event.Phase)
					if err := publisher.Publish(event); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
			}

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					tracker.Update(buttonStatuses(buttons), ctl.Mode(), ctl.Selected())
					snap := tracker.Snapshot()
					log.Printf("heartbeat: uptime=%v", snap.Uptime().Truncate(time.Second))
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(buttonStatuses(buttons), ctl.Mode(), ctl.Selected())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

func buttonStatuses(buttons []*button.Button) []status.ButtonStatus {
	out := make([]status.ButtonStatus, len(buttons))
	for i, b := range buttons {
		out[i] = status.ButtonStatus{
			Label:    b.Label(),
			Phase:    b.Phase(),
			RepeatMs: b.RepeatInterval().Milliseconds(),
			Counts:   b.CountsSnapshot(),
		}
	}
	return out
}

func levelString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
