package reminder

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// Payload is the data carried by a job and handed back to the fire
// handler by the runtime. It is stored with the job, so the wire form
// must stay schema-stable.
type Payload struct {
	ReminderID string `json:"reminder_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`

	// Days is the serialized weekday set for specific-days reminders;
	// empty for every other frequency.
	Days DaySet `json:"days,omitempty"`

	ActiveHours *HourRange `json:"active_hours,omitempty"`
}

func (p Payload) Encode() ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}

func DecodePayload(b []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	if p.ReminderID == "" {
		return Payload{}, fmt.Errorf("decode payload: missing reminder_id")
	}
	return p, nil
}

// NotificationID derives a stable numeric notification id from the
// reminder id, the way the notification sink expects one.
func (p Payload) NotificationID() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p.ReminderID))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}
