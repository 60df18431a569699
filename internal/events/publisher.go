package events

import (
	"github.com/supabase-community/supabase-go"
)

// Publisher notifies browser clients about gallery changes through
// Supabase Realtime. The Go client has no direct publish call; row changes
// on the photos table drive the subscriptions, so PublishEvent stays a
// thin seam for an explicit REST publish later.
type Publisher struct {
	client *supabase.Client
}

func NewPublisher(supabaseURL, key string) (*Publisher, error) {
	client, err := supabase.NewClient(supabaseURL, key, nil)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: client}, nil
}

func (p *Publisher) PublishEvent(channel, event string, payload map[string]interface{}) error {
	if p == nil || p.client == nil {
		return nil
	}
	return nil
}

// PublishPhotoEvent publishes on the shared gallery channel.
func (p *Publisher) PublishPhotoEvent(event string, payload map[string]interface{}) error {
	return p.PublishEvent("photos", event, payload)
}

// Event payloads

func PhotoUploadedPayload(id int64, tier string, price float64) map[string]interface{} {
	return map[string]interface{}{
		"id":     id,
		"tipo":   tier,
		"precio": price,
	}
}

func PhotoDeletedPayload(id int64) map[string]interface{} {
	return map[string]interface{}{
		"id": id,
	}
}

func PhotosPurgedPayload(count int64) map[string]interface{} {
	return map[string]interface{}{
		"deleted_count": count,
	}
}

func PriceUpdatedPayload(tier string, amount float64) map[string]interface{} {
	return map[string]interface{}{
		"tipo":   tier,
		"precio": amount,
	}
}
