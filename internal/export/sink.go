package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultPath is the file a run is exported to when none is configured.
const DefaultPath = "resume_analysis_results.json"

// Sink receives an encoded results document.
type Sink interface {
	Name() string
	Write(ctx context.Context, data []byte) error
}

// FileSink writes the document to Path, replacing any previous file.
type FileSink struct {
	Path string
}

func (s FileSink) Name() string {
	return "file:" + s.path()
}

func (s FileSink) Write(_ context.Context, data []byte) error {
	path := s.path()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func (s FileSink) path() string {
	if p := strings.TrimSpace(s.Path); p != "" {
		return p
	}
	return DefaultPath
}

// RedisSink appends the document to the Redis list Key.
type RedisSink struct {
	Client *redis.Client
	Key    string
}

func (s RedisSink) Name() string {
	return "redis:" + s.Key
}

func (s RedisSink) Write(ctx context.Context, data []byte) error {
	if err := s.Client.RPush(ctx, s.Key, data).Err(); err != nil {
		return fmt.Errorf("push results to redis list %s: %w", s.Key, err)
	}
	return nil
}

// Publish validates doc when validate is set, then writes it to every sink.
// Every sink is attempted; the first failure is returned.
func Publish(ctx context.Context, doc Document, validate bool, sinks ...Sink) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	if validate {
		if err := Validate(data); err != nil {
			return err
		}
	}

	var firstErr error
	for _, sink := range sinks {
		if err := sink.Write(ctx, data); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", sink.Name(), err)
		}
	}
	return firstErr
}
