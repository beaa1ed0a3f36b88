package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Mode          string       `json:"mode"`
	Selected      FieldJSON    `json:"selected"`
	Buttons       []ButtonJSON `json:"buttons"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Config        ConfigJSON   `json:"config"`
}

// FieldJSON is the JSON representation of the selected menu field.
type FieldJSON struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// ButtonJSON is the JSON representation of one button's state.
type ButtonJSON struct {
	Label    string     `json:"label"`
	Phase    string     `json:"phase"`
	RepeatMs int64      `json:"repeat_ms"`
	Counts   CountsJSON `json:"event_counts"`
}

// CountsJSON is the JSON representation of per-kind event counts.
type CountsJSON struct {
	Press       int `json:"press"`
	Release     int `json:"release"`
	LongPress   int `json:"long_press"`
	LongRelease int `json:"long_release"`
	Repeat      int `json:"repeat"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs        int64  `json:"poll_ms"`
	DebounceMs    int64  `json:"debounce_ms"`
	LongPressMs   int64  `json:"long_press_ms"`
	RepeatStartMs int64  `json:"repeat_start_ms"`
	RepeatMinMs   int64  `json:"repeat_min_ms"`
	AccelMs       int64  `json:"accel_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPPort      string `json:"http_port"`
}

func buildInner(snap Snapshot) StatusInner {
	mode := string(snap.Mode)
	if mode == "" {
		mode = "UNKNOWN"
	}

	buttons := make([]ButtonJSON, 0, len(snap.Buttons))
	for _, b := range snap.Buttons {
		phase := string(b.Phase)
		if phase == "" {
			phase = "UNKNOWN"
		}
		buttons = append(buttons, ButtonJSON{
			Label:    b.Label,
			Phase:    phase,
			RepeatMs: b.RepeatMs,
			Counts: CountsJSON{
				Press:       b.Counts.Press,
				Release:     b.Counts.Release,
				LongPress:   b.Counts.LongPress,
				LongRelease: b.Counts.LongRelease,
				Repeat:      b.Counts.Repeat,
			},
		})
	}

	return StatusInner{
		Mode: mode,
		Selected: FieldJSON{
			Name:  snap.Selected.Name,
			Value: snap.Selected.Value,
			Min:   snap.Selected.Min,
			Max:   snap.Selected.Max,
		},
		Buttons:       buttons,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:        snap.Config.PollMs,
			DebounceMs:    snap.Config.DebounceMs,
			LongPressMs:   snap.Config.LongPressMs,
			RepeatStartMs: snap.Config.RepeatStartMs,
			RepeatMinMs:   snap.Config.RepeatMinMs,
			AccelMs:       snap.Config.AccelMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			HTTPPort:      snap.Config.HTTPPort,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
