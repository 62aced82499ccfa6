package storage

import (
	"context"
	"encoding/base64"
	"time"

	"island-timeline/pkg/logger"
)

// DeadLetter is an undecodable queue message kept for later inspection.
type DeadLetter struct {
	Topic      string    `json:"topic"`
	Partition  int       `json:"partition"`
	MessageID  string    `json:"message_id"`
	Reason     string    `json:"reason"`
	Raw        []byte    `json:"raw"`
	ReceivedAt time.Time `json:"received_at"`
}

// LogArchive records dead letters in the log only. Used when no bucket is configured.
type LogArchive struct {
	log *logger.Logger
}

func NewLogArchive(l *logger.Logger) *LogArchive {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &LogArchive{log: l}
}

// Archive logs the letter with its payload, base64 encoded since undecodable
// messages are often not text.
func (a *LogArchive) Archive(ctx context.Context, letter DeadLetter) error {
	a.log.WarnCtx(ctx, "dead letter %s/%d/%s (%d bytes): %s payload=%s",
		letter.Topic, letter.Partition, letter.MessageID, len(letter.Raw), letter.Reason,
		base64.StdEncoding.EncodeToString(letter.Raw))
	return nil
}
