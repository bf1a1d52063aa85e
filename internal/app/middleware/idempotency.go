package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"flatfinder/internal/app/commands"
)

// IdempotentCommand is replayable under a caller-scoped key. An empty key
// disables replay for that dispatch.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a fresh pointer of the handler's result type.
	ResultPrototype() any
}

// FingerprintedCommand describes the request behind a key, so that a key
// reused for a different request is refused instead of replayed.
type FingerprintedCommand interface {
	IdempotencyFingerprint() string
}

var (
	ErrIdempotencyKeyReused = errors.New("middleware: idempotency key reused with a different request")
	errMissingPrototype     = errors.New("middleware: idempotent command requires result prototype")
)

type IdempotencyRecord struct {
	Key         string
	Fingerprint string
	Payload     []byte
	OccurredAt  time.Time
}

// IdempotencyStore keeps the first record saved under a key.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

// Idempotency replays stored successes. Failures are not remembered, so the
// client may retry under the same key. The handler's unit has committed by the
// time the record is written, so a failed write is logged and the result still
// returned.
func Idempotency(store IdempotencyStore, codec ResultCodec, logger *slog.Logger) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := cmd.Key() + ":" + idCmd.IdempotencyKey()
			fingerprint := ""
			if fp, ok := cmd.(FingerprintedCommand); ok {
				fingerprint = fp.IdempotencyFingerprint()
			}

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("idempotency lookup: %w", err)
			}
			if found {
				if rec.Fingerprint != fingerprint {
					return nil, ErrIdempotencyKeyReused
				}
				return replay(codec, rec, idCmd.ResultPrototype())
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := remember(ctx, store, codec, key, fingerprint, result); err != nil && logger != nil {
				logger.WarnContext(ctx, "idempotency record not saved", "command", cmd.Key(), "error", err)
			}
			return result, nil
		})
	}
}

func remember(ctx context.Context, store IdempotencyStore, codec ResultCodec, key, fingerprint string, result any) error {
	rec := IdempotencyRecord{Key: key, Fingerprint: fingerprint, OccurredAt: time.Now().UTC()}
	if result != nil {
		payload, err := codec.Encode(result)
		if err != nil {
			return fmt.Errorf("idempotency encode: %w", err)
		}
		rec.Payload = payload
	}
	if err := store.Save(ctx, rec); err != nil {
		return fmt.Errorf("idempotency save: %w", err)
	}
	return nil
}

func replay(codec ResultCodec, rec IdempotencyRecord, proto any) (any, error) {
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, fmt.Errorf("idempotency decode: %w", err)
	}
	return proto, nil
}
