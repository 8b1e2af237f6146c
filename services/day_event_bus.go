package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/ye11ow-banana/main-be/logger"
)

type broadcaster interface {
	Broadcast(userID uuid.UUID, payload any) int
}

type pusher interface {
	PushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string)
}

// DayEventBus tells a user's open clients and devices that a day changed.
// Delivery never fails the write that caused it.
type DayEventBus struct {
	log  *logger.Logger
	rt   broadcaster
	push pusher
}

func NewDayEventBus(log *logger.Logger, rt broadcaster, push pusher) *DayEventBus {
	return &DayEventBus{log: log, rt: rt, push: push}
}

func (b *DayEventBus) Publish(ctx context.Context, ev DayEvent) {
	if b.rt != nil {
		n := b.rt.Broadcast(ev.UserID, map[string]any{
			"kind": "day.updated",
			"day":  ev,
		})
		b.log.Debug("day event broadcast", "user_id", ev.UserID, "connections", n)
	}
	if b.push != nil {
		// outlives the request
		go b.push.PushToUser(context.WithoutCancel(ctx), ev.UserID, "Day updated",
			"+"+ev.AddedCalories.StringFixed(0)+" kcal on "+ev.Date,
			map[string]string{"type": "day.updated", "date": ev.Date})
	}
}
