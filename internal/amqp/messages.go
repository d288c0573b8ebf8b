package amqp

import (
	"encoding/json"

	"cashbook/internal/core"
)

// routingKey derives the per-entity routing key, e.g. "ledger.income".
func routingKey(ev core.Event) string {
	if ev.Entity == "" {
		return "ledger.config"
	}
	return "ledger." + string(ev.Entity)
}

// encodeEvent converts the event to a JSON message body.
func encodeEvent(ev core.Event) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeEvent parses a message body produced by Notify.
func DecodeEvent(data []byte) (core.Event, error) {
	var ev core.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return core.Event{}, err
	}
	return ev, nil
}
