// Package effects holds the fire-and-forget side-effect sinks the engine
// invokes on transitions. No sink result is ever observed by the engine:
// a missing capability or a failed delivery degrades to a logged no-op and
// never blocks a state transition.
package effects

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Notifier raises a user-facing notification for a completed interval.
type Notifier interface {
	Notify(kind, label string)
}

// Player controls alert playback. Play with loop=true keeps sounding until
// StopAll, which the engine calls when the user's attention returns.
type Player interface {
	Play(kind string, loop bool)
	StopAll()
}

// event is the payload delivered to the webhook sink. The front end owns
// the actual notification text and sound assets.
type event struct {
	Event string    `json:"event"` // notify | play | stop
	Kind  string    `json:"kind,omitempty"`
	Label string    `json:"label,omitempty"`
	Loop  bool      `json:"loop,omitempty"`
	At    time.Time `json:"at"`
}

// Webhook posts engine events to a configured URL so any front end or
// desktop agent can raise the real notification or sound. An empty URL
// disables it entirely.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (w *Webhook) Notify(kind, label string) {
	w.post(event{Event: "notify", Kind: kind, Label: label, At: time.Now()})
}

func (w *Webhook) Play(kind string, loop bool) {
	w.post(event{Event: "play", Kind: kind, Loop: loop, At: time.Now()})
}

func (w *Webhook) StopAll() {
	w.post(event{Event: "stop", At: time.Now()})
}

func (w *Webhook) post(ev event) {
	if w.url == "" {
		return
	}
	body, err := json.Marshal(&ev)
	if err != nil {
		log.Printf("warning: encode sink event: %v", err)
		return
	}
	// fire-and-forget; the caller never waits on delivery
	go func() {
		resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("warning: deliver sink event %q: %v", ev.Event, err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			log.Printf("warning: sink event %q rejected: %s", ev.Event, resp.Status)
		}
	}()
}

// Noop discards every event. Used when no sink is configured.
type Noop struct{}

func (Noop) Notify(kind, label string)   {}
func (Noop) Play(kind string, loop bool) {}
func (Noop) StopAll()                    {}
