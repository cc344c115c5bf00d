package model

import "time"

// SlotLock is an advisory lock document guarding one (veterinarian, date,
// start time) slot against concurrent booking. A unique index on _id makes the
// insert fail for the second writer.
type SlotLock struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}
