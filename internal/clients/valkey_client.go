package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/replybot/config"
)

const VALKEY_REPLIED_KEY = "reddit:replied_posts"

// ValkeyClient remembers which posts already got a reply so they are not
// scraped or reviewed again.
type ValkeyClient struct {
	Client valkey.Client
}

func NewValkeyClient(ctx context.Context, cfg config.ValkeyConfig) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", cfg.Address))
	return &ValkeyClient{Client: client}, nil
}

func (vc *ValkeyClient) Close() {
	vc.Client.Close()
}

func (vc *ValkeyClient) IsReplied(ctx context.Context, postID string) (bool, error) {
	res := vc.Client.Do(ctx, vc.Client.B().Sismember().Key(VALKEY_REPLIED_KEY).Member(postID).Build())
	ok, err := res.AsBool()
	if err != nil {
		return false, fmt.Errorf("[ValkeyClient] sismember %s: %w", postID, err)
	}
	return ok, nil
}

func (vc *ValkeyClient) MarkReplied(ctx context.Context, postID string) error {
	if err := vc.Client.Do(ctx, vc.Client.B().Sadd().Key(VALKEY_REPLIED_KEY).Member(postID).Build()).Error(); err != nil {
		return fmt.Errorf("[ValkeyClient] sadd %s: %w", postID, err)
	}
	slog.Debug("[ValkeyClient] Marked post as replied", slog.String("post_id", postID))
	return nil
}
