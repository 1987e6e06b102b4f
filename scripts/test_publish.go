//go:build ignore

// Публикует запрос пайплайна в stream:pipeline:request и ждёт ответ воркера.
//
//	go run scripts/test_publish.go -file items.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type pipelineRequest struct {
	RequestID uuid.UUID       `json:"request_id"`
	Op        string          `json:"op"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type pipelineResponse struct {
	RequestID uuid.UUID       `json:"request_id"`
	Op        string          `json:"op"`
	Result    json.RawMessage `json:"result"`
	Error     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	file := flag.String("file", "", "items.json to parse (sample payload is used when empty)")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	raw := []byte(`{"data":[{"id":1,"category_id":"10","title":"Box","latitude":1.5,"longitude":2.5,"regionId":5}]}`)
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *file, err)
		}
		raw = data
	}

	payload, _ := json.Marshal(map[string]interface{}{"raw": raw})
	req := pipelineRequest{
		RequestID: uuid.New(),
		Op:        "parseJSON",
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(req)
	if err != nil {
		log.Fatalf("Failed to marshal request: %v", err)
	}

	// Ответы читаем с текущего конца стрима
	lastID := "$"
	if last, err := client.XRevRangeN(ctx, "stream:pipeline:done", "+", "-", 1).Result(); err == nil && len(last) > 0 {
		lastID = last[0].ID
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "stream:pipeline:request",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish request: %v", err)
	}

	fmt.Printf("Request published\n")
	fmt.Printf("   Stream: stream:pipeline:request\n")
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Request ID: %s\n", req.RequestID)
	fmt.Printf("\nWaiting for response in stream:pipeline:done...\n")

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		streams, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{"stream:pipeline:done", lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil && err != redis.Nil {
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				dataStr, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				var resp pipelineResponse
				if err := json.Unmarshal([]byte(dataStr), &resp); err != nil || resp.RequestID != req.RequestID {
					continue
				}

				if resp.Error != nil {
					fmt.Printf("\nWorker error: %s: %s\n", resp.Error.Code, resp.Error.Message)
					return
				}

				var items []map[string]interface{}
				_ = json.Unmarshal(resp.Result, &items)
				fmt.Printf("\nResponse received: %d items\n", len(items))
				pretty, _ := json.MarshalIndent(items, "", "  ")
				fmt.Printf("%s\n", pretty)
				return
			}
		}
	}

	fmt.Println("Timeout waiting for response (is cmd/worker running?)")
}
