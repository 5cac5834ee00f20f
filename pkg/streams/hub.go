package streams

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sidekick-ai/sidekick-ai/pkg/safe"
	"github.com/sidekick-ai/sidekick-ai/pkg/types/protocol"
)

var (
	// ErrDisabled 未配置 redis 时恢复能力整体关闭
	ErrDisabled = errors.New("stream hub is disabled")
	// ErrStreamNotFound 缓冲已过期或从未存在
	ErrStreamNotFound = errors.New("stream buffer not found")
)

// bufferTTL 缓冲与频道的存活时间，覆盖一次完整生成外加短暂的重连窗口
const bufferTTL = time.Minute * 5

// Hub 基于 redis list + pubsub 的可恢复流中心。
// 生成侧把每个已编码帧写入 list 并同时 publish，
// 恢复侧订阅后回放 list 再续接实时帧，允许重复投递。
type Hub struct {
	rds *redis.Client
}

// NewHub rds 传 nil 表示降级运行：实时流照常，断线恢复不可用。
func NewHub(rds *redis.Client) *Hub {
	return &Hub{rds: rds}
}

func (h *Hub) Enabled() bool {
	return h != nil && h.rds != nil
}

// Writer 单条流的生成侧句柄
type Writer struct {
	hub     *Hub
	buffer  string
	channel string
	closed  bool
}

func (h *Hub) NewWriter(streamID string) *Writer {
	return &Writer{
		hub:     h,
		buffer:  protocol.GenStreamBufferKey(streamID),
		channel: protocol.GenStreamChannelKey(streamID),
	}
}

// Append 把一个已编码帧同时写入缓冲与频道
func (w *Writer) Append(ctx context.Context, payload string) error {
	if !w.hub.Enabled() || w.closed {
		return nil
	}

	pipe := w.hub.rds.Pipeline()
	pipe.RPush(ctx, w.buffer, payload)
	pipe.Expire(ctx, w.buffer, bufferTTL)
	pipe.Publish(ctx, w.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append stream frame, %w", err)
	}
	return nil
}

// Close 写入结束标记，此后的 Append 均为空操作
func (w *Writer) Close(ctx context.Context) error {
	if !w.hub.Enabled() || w.closed {
		return nil
	}
	err := w.Append(ctx, protocol.DoneSentinel)
	w.closed = true
	return err
}

// Resume 回放指定流：先订阅频道再读取缓冲，避免漏帧，代价是可能重复。
// 返回的 channel 在读到结束标记、缓冲过期或 ctx 取消后关闭。
func (h *Hub) Resume(ctx context.Context, streamID string) (<-chan string, error) {
	if !h.Enabled() {
		return nil, ErrDisabled
	}

	buffer := protocol.GenStreamBufferKey(streamID)
	channel := protocol.GenStreamChannelKey(streamID)

	sub := h.rds.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe stream channel, %w", err)
	}

	past, err := h.rds.LRange(ctx, buffer, 0, -1).Result()
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to read stream buffer, %w", err)
	}
	if len(past) == 0 {
		sub.Close()
		return nil, ErrStreamNotFound
	}

	out := make(chan string, 32)
	go safe.Run(func() {
		defer close(out)
		defer sub.Close()

		for _, payload := range past {
			if payload == protocol.DoneSentinel {
				return
			}
			select {
			case out <- payload:
			case <-ctx.Done():
				return
			}
		}

		live := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-live:
				if !ok {
					return
				}
				if msg.Payload == protocol.DoneSentinel {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	})

	return out, nil
}

// Finished 报告某条流是否已写入结束标记
func (h *Hub) Finished(ctx context.Context, streamID string) (bool, error) {
	if !h.Enabled() {
		return false, ErrDisabled
	}

	last, err := h.rds.LRange(ctx, protocol.GenStreamBufferKey(streamID), -1, -1).Result()
	if err != nil {
		return false, fmt.Errorf("failed to inspect stream buffer, %w", err)
	}
	return len(last) == 1 && last[0] == protocol.DoneSentinel, nil
}
