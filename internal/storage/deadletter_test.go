package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"island-timeline/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (p *recordingPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if p.err != nil {
		return nil, p.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	p.inputs = append(p.inputs, params)
	p.bodies = append(p.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func letter() DeadLetter {
	return DeadLetter{
		Topic:      "feed-events",
		Partition:  3,
		MessageID:  "1700000000000-0",
		Reason:     "malformed event",
		Raw:        []byte{0x00, 0x01},
		ReceivedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}
}

func TestS3ArchivePutsJSONObject(t *testing.T) {
	putter := &recordingPutter{}
	archive := &S3Archive{cfg: S3Config{Bucket: "dlq", Prefix: "dead-letters"}, s3: putter}

	require.NoError(t, archive.Archive(context.Background(), letter()))
	require.Len(t, putter.inputs, 1)
	assert.Equal(t, "dlq", aws.ToString(putter.inputs[0].Bucket))
	assert.Equal(t, "dead-letters/feed-events/2026/03/04/3-1700000000000-0.json", aws.ToString(putter.inputs[0].Key))
	assert.Equal(t, "application/json", aws.ToString(putter.inputs[0].ContentType))

	var got DeadLetter
	require.NoError(t, json.Unmarshal(putter.bodies[0], &got))
	assert.Equal(t, []byte{0x00, 0x01}, got.Raw)
	assert.Equal(t, "malformed event", got.Reason)
}

func TestS3ArchiveWrapsPutFailure(t *testing.T) {
	boom := errors.New("access denied")
	archive := &S3Archive{cfg: S3Config{Bucket: "dlq", Prefix: "p"}, s3: &recordingPutter{err: boom}}
	err := archive.Archive(context.Background(), letter())
	assert.ErrorIs(t, err, boom)
}

func TestNewS3ArchiveRequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), S3Config{Region: "eu-west-1"})
	assert.Error(t, err)
}

func TestLogArchiveNeverFails(t *testing.T) {
	assert.NoError(t, NewLogArchive(logger.NewNop()).Archive(context.Background(), letter()))
}

func TestLogArchiveLogsPayload(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	archive := NewLogArchive(&logger.Logger{Logger: zap.New(core)})

	require.NoError(t, archive.Archive(context.Background(), letter()))
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "payload=AAE=")
	assert.Contains(t, entries[0].Message, "1700000000000-0")
}
