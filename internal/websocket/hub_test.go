package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubBroadcastsToAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := &Client{Hub: hub, Send: make(chan []byte, 1)}
	b := &Client{Hub: hub, Send: make(chan []byte, 1)}
	hub.Register <- a
	hub.Register <- b

	alert := PurchaseAlert{ItemName: "Gala Ticket", AmountCents: 10000, Type: "event"}
	hub.Notify(alert)

	for _, client := range []*Client{a, b} {
		select {
		case msg := <-client.Send:
			var got PurchaseAlert
			if err := json.Unmarshal(msg, &got); err != nil {
				t.Fatal(err)
			}
			if got != alert {
				t.Errorf("alert = %+v, want %+v", got, alert)
			}
		case <-time.After(time.Second):
			t.Fatal("client did not receive the alert")
		}
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{Hub: hub, Send: make(chan []byte, 1)}
	hub.Register <- client
	hub.Unregister <- client

	hub.Notify(PurchaseAlert{ItemName: "Mug", AmountCents: 1500, Type: "merchandise"})

	select {
	case _, ok := <-client.Send:
		if ok {
			t.Error("unregistered client received an alert")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("send channel left open after unregister")
	}
}
