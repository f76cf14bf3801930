package pg_listener

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lib/pq"
)

// Channel is the NOTIFY channel raised by the offender_delta insert trigger.
const Channel = "offender_delta_change"

type NotificationHandler interface {
	HandleNotification(table string, data map[string]interface{}) error
}

type ListenerConfig struct {
	PgConnStr string
	Interval  time.Duration
	Timeout   time.Duration
}

// DBListener tails the offender_delta_change channel so workers hear about
// new deltas without polling the table.
type DBListener struct {
	config  ListenerConfig
	handler NotificationHandler
}

type NotificationPayload struct {
	Table string                 `json:"table"`
	Data  map[string]interface{} `json:"data"`
}

func NewDBListener(config ListenerConfig, handler NotificationHandler) *DBListener {
	return &DBListener{
		config:  config,
		handler: handler,
	}
}

func (d *DBListener) Start() {
	listener := pq.NewListener(d.config.PgConnStr, 10*time.Second, d.config.Timeout, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Listener error: %v\n", err)
			return
		}
	})
	err := listener.Listen(Channel)
	if err != nil {
		log.Fatalf("Error listening to PostgreSQL channel: %v", err)
	}

	fmt.Printf("Start listening for PostgreSQL notifications on channel '%s'...\n", Channel)

	for {
		d.waitForNotification(listener)
	}
}

func (d *DBListener) waitForNotification(listener *pq.Listener) {
	select {
	case notification := <-listener.Notify:
		d.handleNotification(notification)
	case <-time.After(90 * time.Second):
		// pq.Listener reconnects quietly; the timeout just keeps the loop
		// from blocking forever on a dead connection.
	}
}

func (d *DBListener) handleNotification(notification *pq.Notification) {
	if notification == nil {
		return
	}
	var payload NotificationPayload
	err := json.Unmarshal([]byte(notification.Extra), &payload)
	if err != nil {
		log.Printf("Error unmarshalling notification payload: %v", err)
		return
	}

	if err := d.handler.HandleNotification(payload.Table, payload.Data); err != nil {
		log.Printf("Error handling notification: %v", err)
	}
}
